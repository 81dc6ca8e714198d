// Package apperr はAPIのエラー分類とJSONエラーレスポンスを提供します。
package apperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/galoya-api/internal/logging"
)

// Kind はエラーの分類です。HTTPステータスとの対応は Status で決まります。
type Kind int

const (
	KindBackend Kind = iota
	KindInvalidRequest
	KindValidation
	KindInvalidCredentials
	KindUnauthenticated
	KindNotFound
	KindTooManyRequests
	KindNotification
)

// Error はクライアントへ返却してよいエラーです。
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status は分類に対応するHTTPステータスを返します。
func (e *Error) Status() int {
	switch e.Kind {
	case KindInvalidRequest, KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// InvalidRequest は入力欠落・不正形式のエラーを作成します。
func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Code: "INVALID_REQUEST", Message: message}
}

// Validation はリソースのスキーマ制約違反を表します。
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// InvalidCredentials はログイン失敗を表します。ユーザー不在とパスワード不一致を区別しません。
func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
}

// Unauthenticated は有効なセッションがないことを表します。
func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Code: "UNAUTHENTICATED", Message: "Not authenticated"}
}

// Unauthorized はガードで弾かれた場合のエラーです。
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthenticated, Code: "UNAUTHORIZED", Message: "Unauthorized"}
}

// NotFound は対象が存在しないことを表します。
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: message}
}

// TooManyRequests はログイン試行のロック中を表します。
func TooManyRequests() *Error {
	return &Error{Kind: KindTooManyRequests, Code: "TOO_MANY_ATTEMPTS", Message: "Too many login attempts, try again later"}
}

// NotificationFailure は通知の配送失敗を表します。入力エラーとは区別します。
func NotificationFailure(err error) *Error {
	return &Error{Kind: KindNotification, Code: "NOTIFICATION_FAILED", Message: "Failed to send message", Err: err}
}

// Backend は永続化やセッションストアの失敗を表します。
func Backend(message string, err error) *Error {
	return &Error{Kind: KindBackend, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

// Respond はエラーを {code, message} 形式の JSON で返却し、リクエストを中断します。
// 500 系は内部詳細をログにのみ残し、レスポンスには含めません。
func Respond(c *gin.Context, logger *zap.Logger, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, context.Canceled):
		c.AbortWithStatusJSON(http.StatusRequestTimeout, gin.H{
			"code":    "REQUEST_CANCELED",
			"message": "Request canceled",
		})
		return
	default:
		apiErr = Backend("Internal server error", err)
	}

	status := apiErr.Status()
	if status >= http.StatusInternalServerError && logger != nil {
		logging.Error(logger, apiErr.Message, err,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	})
}
