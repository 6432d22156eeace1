package domain

// EmailVerification is a single-use email confirmation record.
// PK: token. ExpiresAt is a Unix timestamp also used as DynamoDB TTL,
// so expired records that were never consumed are cleaned up by the table.
type EmailVerification struct {
	Token     string `json:"token" dynamodbav:"token"`
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}

// TwoFactorCode is a 6-digit login code delivered by email.
// PK: user_id, SK: code. Consumed by flipping IsUsed, never deleted here.
type TwoFactorCode struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	Code      string `json:"code" dynamodbav:"code"`
	IsUsed    bool   `json:"is_used" dynamodbav:"is_used"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}
