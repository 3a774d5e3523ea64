package consts

const (
	// HeaderVersion サーバーバージョンを返すレスポンスヘッダー
	HeaderVersion = "X-STRAND-VERSION"

	// KeyUserID echo.Context用 認証済みユーザーUUIDキー
	KeyUserID = "userID"
)
