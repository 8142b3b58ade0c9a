// middleware содержит HTTP-middleware сервиса: request-id и access-лог,
// перехват паник, таймаут запроса и аутентификацию bearer-токена.
//
// Порядок подключения в роутере: Logging -> Recover -> Timeout, затем
// Authenticate на защищённых маршрутах. Logging стоит первым, чтобы паника
// и таймаут попали в access-лог с request_id.
package middleware

import (
	"encoding/json"
	"net/http"
)

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
