package auth

import (
	"sync"
	"time"
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// LockoutPolicy はログイン失敗によるロックの設定です。
type LockoutPolicy struct {
	MaxAttempts int           // ロックまでの失敗回数
	Window      time.Duration // 失敗回数を数える期間
	Lock        time.Duration // ロック期間
}

// DefaultLockoutPolicy は 15 分間に 5 回失敗すると 10 分ロックします。
var DefaultLockoutPolicy = LockoutPolicy{
	MaxAttempts: 5,
	Window:      15 * time.Minute,
	Lock:        10 * time.Minute,
}

// loginLimiter はIP単位でログイン失敗回数を管理します。
type loginLimiter struct {
	policy   LockoutPolicy
	lock     sync.Mutex
	attempts map[string]*attemptState
	now      func() time.Time
}

func newLoginLimiter(policy LockoutPolicy) *loginLimiter {
	if policy.MaxAttempts <= 0 {
		policy = DefaultLockoutPolicy
	}
	return &loginLimiter{
		policy:   policy,
		attempts: make(map[string]*attemptState),
		now:      time.Now,
	}
}

// checkLock はロック中であれば残り時間を返します。
func (l *loginLimiter) checkLock(ip string) time.Duration {
	l.lock.Lock()
	defer l.lock.Unlock()

	state, ok := l.attempts[ip]
	if !ok {
		return 0
	}
	now := l.now()
	if !now.Before(state.lockedUntil) {
		return 0
	}
	return state.lockedUntil.Sub(now)
}

// recordFailure は失敗を記録し、残りの試行回数を返します。
func (l *loginLimiter) recordFailure(ip string) int {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := l.now()
	state, ok := l.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > l.policy.Window {
		state = &attemptState{firstAttempt: now}
		l.attempts[ip] = state
	}

	state.count++
	if state.count >= l.policy.MaxAttempts {
		state.lockedUntil = now.Add(l.policy.Lock)
		state.count = l.policy.MaxAttempts
	}

	remaining := l.policy.MaxAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (l *loginLimiter) reset(ip string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	delete(l.attempts, ip)
}
