package notifxses

import "github.com/cloudeforte/accounts/pkg/errx"

var sesErrors = errx.NewRegistry("NOTIFX_SES")

var (
	ErrSendFailed = sesErrors.Register("SEND_FAILED", errx.TypeExternal, 502, "SES send failed")
)
