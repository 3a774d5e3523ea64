package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/strandchat/strand/repository"
	"github.com/strandchat/strand/router/consts"
	"github.com/strandchat/strand/router/extension/ctxkey"
)

const authScheme = "Bearer"

var wsUpgrader = &websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// UserAuthenticate リクエスト認証ミドルウェア
//
// tokenクエリパラメータまたはAuthorizationヘッダーのJWTを検証し、
// subのユーザーをリクエストに紐付ける
func UserAuthenticate(repo repository.UserRepository, secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.QueryParam("token")
			if len(raw) == 0 {
				if ah := c.Request().Header.Get(echo.HeaderAuthorization); len(ah) > len(authScheme)+1 && ah[:len(authScheme)] == authScheme {
					raw = ah[len(authScheme)+1:]
				}
			}
			if len(raw) == 0 {
				return rejectWS(c, "missing token")
			}

			claims := jwt.RegisteredClaims{}
			_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				return rejectWS(c, "invalid token")
			}

			uid, err := uuid.FromString(claims.Subject)
			if err != nil || uid == uuid.Nil {
				return rejectWS(c, "invalid token")
			}

			user, err := repo.GetUser(uid)
			if err != nil {
				if err == repository.ErrNotFound {
					return rejectWS(c, "unknown user")
				}
				return echo.NewHTTPError(http.StatusInternalServerError)
			}

			c.Set(consts.KeyUserID, user.ID)
			c.SetRequest(c.Request().WithContext(context.WithValue(c.Request().Context(), ctxkey.UserID, user.ID)))
			return next(c)
		}
	}
}

// rejectWS 認証失敗をWebSocketプロトコル上で通知します
//
// アップグレード前に4xxを返すだけではブラウザのクライアントから
// 失敗理由が読めないため、一旦アップグレードしてエラーフレームを
// ベストエフォートで送ってからポリシー違反で切断する
func rejectWS(c echo.Context, reason string) error {
	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// WebSocketのハンドシェイクですらない
		return echo.NewHTTPError(http.StatusUnauthorized, reason)
	}
	defer conn.Close()

	b, _ := json.Marshal(map[string]string{"error": reason})
	_ = conn.WriteMessage(websocket.TextMessage, b)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(5*time.Second))
	return nil
}
