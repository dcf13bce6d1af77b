package dto

// LoginReq represents the request body for the /auth/login endpoint.
// Password has no minimum here: login must treat a too-short password like
// any other wrong password instead of leaking the policy.
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
