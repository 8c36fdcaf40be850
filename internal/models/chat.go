// internal/models/chat.go
package models

// Role is the access level of the caller, resolved by the session layer.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
)

// CallerIdentity carries who is asking. It is threaded explicitly through
// the pipeline; nothing reads identity from ambient state.
type CallerIdentity struct {
	Role   Role  `json:"role"`
	UserID int64 `json:"userId,omitempty"`
}

// IsLoggedIn reports whether the caller has an authenticated account.
func (c CallerIdentity) IsLoggedIn() bool {
	return c.UserID > 0 && c.Role != RoleAnonymous
}

// IsAdmin reports whether the caller has admin privileges.
func (c CallerIdentity) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Reply type labels returned to the client.
const (
	ReplyOrderStatus   = "order_status"
	ReplyOrderHistory  = "order_history"
	ReplyProductSearch = "product_search"
	ReplyProductList   = "product_list"
	ReplyReturnPolicy  = "return_policy"
	ReplyShipping      = "shipping"
	ReplyPayment       = "payment"
	ReplyGreeting      = "greeting"
	ReplyHelp          = "help"
	ReplyQuantitative  = "quantitative"
	ReplyInfo          = "info"
	ReplyError         = "error"
	ReplyGeneral       = "general"
)

// Reply is the uniform chat response envelope.
type Reply struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Type    string                 `json:"type,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// InfoReply builds a successful informational reply.
func InfoReply(msg, replyType string) *Reply {
	return &Reply{Success: true, Message: msg, Type: replyType}
}

// FailureReply builds a failed reply carrying only a message.
func FailureReply(msg string) *Reply {
	return &Reply{Success: false, Message: msg}
}
