package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contextKeySession = "session.current"
	contextKeyError   = "session.error"

	tokenBytes     = 32
	maxCreateTries = 3
)

// CookieOptions はセッションCookieの属性です。環境から推測せず、設定で明示します。
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// Options は Manager の設定です。
type Options struct {
	Cookie CookieOptions
	TTL    time.Duration // 最終アクセスからの有効期間（ローリング）
	Secret []byte        // ストアのキー導出に使う秘密鍵
}

// Session はリクエストに紐づく有効なセッションです。
type Session struct {
	token string
	Record
}

// Manager はセッションのライフサイクル（発行・ローリング更新・破棄）を管理します。
type Manager struct {
	store  Store
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewManager は Manager を作成します。
func NewManager(store Store, opts Options, logger *zap.Logger) *Manager {
	if opts.Cookie.Path == "" {
		opts.Cookie.Path = "/"
	}
	if opts.Cookie.SameSite == http.SameSiteDefaultMode {
		opts.Cookie.SameSite = http.SameSiteLaxMode
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		opts:   opts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Middleware はCookieからセッションを読み込み、有効であれば有効期限を延長してコンテキストへ格納します。
// セッションが無い・無効な場合でもリクエストは通します（認可判定はガードの責務）。
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.opts.Cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}
		if !validToken(token) {
			m.clearCookie(c)
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := m.key(token)
		record, err := m.store.Get(ctx, key)
		switch {
		case errors.Is(err, ErrNotFound):
			m.clearCookie(c)
			c.Next()
			return
		case err != nil:
			m.logger.Error("failed to load session", zap.Error(err))
			c.Set(contextKeyError, err)
			c.Next()
			return
		}

		now := m.now()
		if !now.Before(record.ExpiresAt) {
			_ = m.store.Delete(ctx, key)
			m.clearCookie(c)
			c.Next()
			return
		}

		record.LastSeenAt = now
		record.ExpiresAt = now.Add(m.opts.TTL)
		ok, err := m.store.Refresh(ctx, key, record, m.opts.TTL)
		if err != nil {
			// 延長に失敗しても既存の有効期限内なのでセッションは有効とする
			m.logger.Warn("failed to refresh session", zap.String("userId", record.UserID), zap.Error(err))
		} else if !ok {
			m.clearCookie(c)
			c.Next()
			return
		} else {
			m.writeCookie(c, token)
		}

		c.Set(contextKeySession, &Session{token: token, Record: *record})
		c.Next()
	}
}

// Establish はログイン成功時に新しいセッションを発行します。
// ログイン前のセッションIDは再利用せず、保存の完了後にのみCookieを発行します。
func (m *Manager) Establish(c *gin.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	ctx := c.Request.Context()

	if prev := m.currentToken(c); prev != "" {
		if err := m.store.Delete(ctx, m.key(prev)); err != nil {
			m.logger.Warn("failed to discard previous session", zap.Error(err))
		}
	}

	now := m.now()
	record := Record{
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(m.opts.TTL),
	}

	for attempt := 0; attempt < maxCreateTries; attempt++ {
		token, err := generateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session token: %w", err)
		}
		created, err := m.store.Create(ctx, m.key(token), &record, m.opts.TTL)
		if err != nil {
			return nil, err
		}
		if !created {
			continue
		}
		m.writeCookie(c, token)
		sess := &Session{token: token, Record: record}
		c.Set(contextKeySession, sess)
		c.Set(contextKeyError, nil)
		return sess, nil
	}
	return nil, errors.New("failed to allocate a unique session id")
}

// Destroy はサーバー側のセッションを削除し、Cookieを消去します。
// セッションが無い場合も成功として扱います。
func (m *Manager) Destroy(c *gin.Context) error {
	var err error
	if token := m.currentToken(c); token != "" {
		err = m.store.Delete(c.Request.Context(), m.key(token))
	}
	m.clearCookie(c)
	c.Set(contextKeySession, (*Session)(nil))
	return err
}

// FromContext はミドルウェアが格納した有効なセッションを返します。
func FromContext(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(contextKeySession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*Session)
	if !ok || sess == nil {
		return nil, false
	}
	return sess, true
}

// LoadError はセッションストアの読み込みに失敗した場合のエラーを返します。
func LoadError(c *gin.Context) error {
	v, ok := c.Get(contextKeyError)
	if !ok {
		return nil
	}
	err, _ := v.(error)
	return err
}

// currentToken は有効なセッション、なければ受信したCookieのトークンを返します。
func (m *Manager) currentToken(c *gin.Context) string {
	if sess, ok := FromContext(c); ok {
		return sess.token
	}
	token, err := c.Cookie(m.opts.Cookie.Name)
	if err != nil || !validToken(token) {
		return ""
	}
	return token
}

// key はトークンからストアのキーを導出します。ストアにはトークンそのものを置きません。
func (m *Manager) key(token string) string {
	mac := hmac.New(sha256.New, m.opts.Secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *Manager) writeCookie(c *gin.Context, token string) {
	m.setCookie(c, &http.Cookie{
		Name:     m.opts.Cookie.Name,
		Value:    token,
		Path:     m.opts.Cookie.Path,
		Domain:   m.opts.Cookie.Domain,
		MaxAge:   int(m.opts.TTL.Seconds()),
		Expires:  m.now().Add(m.opts.TTL),
		Secure:   m.opts.Cookie.Secure,
		HttpOnly: true,
		SameSite: m.opts.Cookie.SameSite,
	})
}

func (m *Manager) clearCookie(c *gin.Context) {
	m.setCookie(c, &http.Cookie{
		Name:     m.opts.Cookie.Name,
		Value:    "",
		Path:     m.opts.Cookie.Path,
		Domain:   m.opts.Cookie.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.opts.Cookie.Secure,
		HttpOnly: true,
		SameSite: m.opts.Cookie.SameSite,
	})
}

// setCookie は同名Cookieの既存の Set-Cookie を置き換えます。
func (m *Manager) setCookie(c *gin.Context, cookie *http.Cookie) {
	header := c.Writer.Header()
	prefix := cookie.Name + "="
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
	http.SetCookie(c.Writer, cookie)
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func validToken(token string) bool {
	if len(token) != tokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
