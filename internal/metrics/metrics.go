// metrics регистрирует прометей-метрики сервиса в default-реестре;
// отдаются через promhttp на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokenValidations — исходы проверки access-токенов.
	// result: accepted | rejected | failed (сбой хранилища, fail closed).
	TokenValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "application_auth",
		Name:      "token_validations_total",
		Help:      "Access token validation outcomes.",
	}, []string{"result"})

	// Logins — исходы операций входа.
	// kind: login | admin_login; result: ok | denied | error.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "application_auth",
		Name:      "logins_total",
		Help:      "Login attempt outcomes.",
	}, []string{"kind", "result"})

	// Rotations — исходы ротаций refresh-токенов.
	// result: ok | invalid | error.
	Rotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "application_auth",
		Name:      "refresh_rotations_total",
		Help:      "Refresh token rotation outcomes.",
	}, []string{"result"})
)
