package dynamo

// DynamoDB attribute names referenced in key conditions and update expressions.
const (
	fieldUserID     = "user_id"
	fieldEmail      = "email"
	fieldAdminID    = "admin_id"
	fieldToken      = "token"
	fieldExpiresAt  = "expires_at"
	fieldProductID  = "product_id"
	fieldOrderID    = "order_id"
	fieldStock      = "stock"
	fieldStatus     = "status"
	fieldUpdatedAt  = "updated_at"
	fieldCreatedAt  = "created_at"
	fieldLastLogin  = "last_login"
	fieldCategory   = "category"
	fieldSearchText = "search_text"
)
