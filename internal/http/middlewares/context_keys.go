package middlewares

type ctxKey string

const (
	CtxUserID         ctxKey = "userID"
	CtxOrganizationID ctxKey = "organizationID"
	CtxRoleID         ctxKey = "roleID"
	CtxRequestID      ctxKey = "requestID"
)
