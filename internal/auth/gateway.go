// Package auth はログイン・ログアウト・現在ユーザー取得と、更新系ルートを保護するガードを提供します。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/galoya-api/internal/apperr"
	"github.com/yourusername/galoya-api/internal/logging"
	"github.com/yourusername/galoya-api/internal/session"
	"github.com/yourusername/galoya-api/internal/users"
)

// fallbackDummyHash はダミーハッシュを生成できなかった場合に使う bcrypt ハッシュ（コスト10）です。
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ContextUserKey は、ガードを通過したユーザーをハンドラー間で共有するためのキーです。
const ContextUserKey = "auth.user"

// ログイン結果（メトリクスのラベル）
const (
	LoginSucceeded = "success"
	LoginFailed    = "invalid_credentials"
	LoginLocked    = "locked"
	LoginError     = "error"
)

// UserStore はユーザーの参照を提供します。
type UserStore interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

// PasswordHasher はパスワードのハッシュ化と検証を提供します。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// LoginObserver はログイン試行の結果を受け取ります。
type LoginObserver interface {
	ObserveLogin(result string)
}

// Gateway は認証処理をまとめた構造体です。状態はセッションマネージャーとユーザーストアが持ちます。
type Gateway struct {
	users    UserStore
	hasher   PasswordHasher
	sessions *session.Manager
	limiter  *loginLimiter
	observer LoginObserver
	logger   *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewGateway は Gateway を作成します。observer は nil でも構いません。
func NewGateway(userStore UserStore, hasher PasswordHasher, sessions *session.Manager, policy LockoutPolicy, observer LoginObserver, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		users:    userStore,
		hasher:   hasher,
		sessions: sessions,
		limiter:  newLoginLimiter(policy),
		observer: observer,
		logger:   logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserView はクライアントへ返すユーザー情報です。パスワードハッシュは含めません。
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Login は POST /api/auth/login のハンドラーです。
func (g *Gateway) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, g.logger, apperr.InvalidRequest("Username and password required"))
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		apperr.Respond(c, g.logger, apperr.InvalidRequest("Username and password required"))
		return
	}

	ip := c.ClientIP()
	if retryAfter := g.limiter.checkLock(ip); retryAfter > 0 {
		g.observe(LoginLocked)
		// Retry-After は秒数で返す
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds())+1, 10))
		apperr.Respond(c, g.logger, apperr.TooManyRequests())
		return
	}

	user, err := g.authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var apiErr *apperr.Error
		if errors.As(err, &apiErr) && apiErr.Kind == apperr.KindInvalidCredentials {
			g.limiter.recordFailure(ip)
			g.observe(LoginFailed)
			g.logger.Debug("login rejected", zap.String("clientIp", ip))
		} else {
			g.observe(LoginError)
		}
		apperr.Respond(c, g.logger, err)
		return
	}

	// セッションの保存が確定するまで成功レスポンスは返さない
	if _, err := g.sessions.Establish(c, user.ID); err != nil {
		g.observe(LoginError)
		apperr.Respond(c, g.logger, apperr.Backend("Login failed", err))
		return
	}

	g.limiter.reset(ip)
	g.observe(LoginSucceeded)
	g.logger.Info("login succeeded", zap.String("userId", user.ID))

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    UserView{ID: user.ID, Username: user.Username},
	})
}

// Logout は POST /api/auth/logout のハンドラーです。クライアントから見て常に成功します。
func (g *Gateway) Logout(c *gin.Context) {
	if err := g.sessions.Destroy(c); err != nil {
		// Cookie は消えるが、サーバー側のセッションは有効期限まで残る
		logging.Error(g.logger, "failed to destroy session on logout", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me は GET /api/auth/me のハンドラーです。
func (g *Gateway) Me(c *gin.Context) {
	user, err := g.currentUser(c)
	if err != nil {
		apperr.Respond(c, g.logger, err)
		return
	}
	c.JSON(http.StatusOK, UserView{ID: user.ID, Username: user.Username})
}

// RequireAuthentication は有効なセッションが無いリクエストを 401 で中断するミドルウェアを返します。
// ロールの区別は行いません。
func (g *Gateway) RequireAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := g.currentUser(c)
		if err != nil {
			var apiErr *apperr.Error
			if errors.As(err, &apiErr) && apiErr.Kind == apperr.KindUnauthenticated {
				err = apperr.Unauthorized()
			}
			apperr.Respond(c, g.logger, err)
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser はガードが格納したユーザーを返します。
func CurrentUser(c *gin.Context) (*users.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*users.User)
	return user, ok && user != nil
}

// authenticate は資格情報を検証します。ユーザー不在とパスワード不一致は同じエラーになります。
func (g *Gateway) authenticate(ctx context.Context, username, password string) (*users.User, error) {
	user, err := g.users.GetByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		// 応答時間でユーザーの有無が分からないよう、ダミーのハッシュでも検証する
		g.hasher.Verify(password, g.dummy())
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, apperr.Backend("Internal server error", err)
	}
	if !g.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}
	return user, nil
}

// currentUser はセッションのユーザーを再取得します。
// ユーザーが削除済みならセッションを破棄し、未ログインと同じ扱いにします。
func (g *Gateway) currentUser(c *gin.Context) (*users.User, error) {
	if err := session.LoadError(c); err != nil {
		return nil, apperr.Backend("Internal server error", err)
	}
	sess, ok := session.FromContext(c)
	if !ok {
		return nil, apperr.Unauthenticated()
	}

	user, err := g.users.GetByID(c.Request.Context(), sess.UserID)
	if errors.Is(err, users.ErrNotFound) {
		g.logger.Info("session references missing user, destroying", zap.String("userId", sess.UserID))
		if err := g.sessions.Destroy(c); err != nil {
			logging.Error(g.logger, "failed to destroy dangling session", err)
		}
		return nil, apperr.Unauthenticated()
	}
	if err != nil {
		return nil, apperr.Backend("Internal server error", err)
	}
	return user, nil
}

func (g *Gateway) dummy() string {
	g.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		hashed, err := g.hasher.Hash(hex.EncodeToString(buf))
		if err != nil {
			g.logger.Warn("failed to prepare dummy hash, using fallback", zap.Error(err))
			hashed = fallbackDummyHash
		}
		g.dummyHash = hashed
	})
	return g.dummyHash
}

func (g *Gateway) observe(result string) {
	if g.observer != nil {
		g.observer.ObserveLogin(result)
	}
}
