package dto

type MeResponse struct {
	ID           int64  `json:"id"`
	Nickname     string `json:"nickname"`
	School       string `json:"school"`
	Bio          string `json:"bio"`
	SocialHandle string `json:"social_handle"`
	Gender       string `json:"gender"`
	Status       string `json:"status"`
}

type UpdateProfileRequest struct {
	Nickname     string `json:"nickname"`
	School       string `json:"school"`
	Bio          string `json:"bio"`
	SocialHandle string `json:"social_handle"`
	Gender       string `json:"gender"`
}

type VerifyAccountRequest struct {
	Code string `json:"code"`
}
