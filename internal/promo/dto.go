// AngelaMos | 2026
// dto.go

package promo

type RedeemRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}
