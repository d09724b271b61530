package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/currencyguard-server/internal/model"
)

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type classificationResponse struct {
	Status       model.Verdict   `json:"status"`
	Confidence   float64         `json:"confidence"`
	Denomination *string         `json:"denomination"`
	Features     []model.Feature `json:"features"`
}

type scanResponse struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	ImagePath    string          `json:"imagePath"`
	Result       model.Verdict   `json:"result"`
	Confidence   float64         `json:"confidence"`
	Denomination *string         `json:"denomination"`
	Features     []model.Feature `json:"features"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type statsResponse struct {
	Total             int     `json:"total"`
	Genuine           int     `json:"genuine"`
	Counterfeit       int     `json:"counterfeit"`
	AverageConfidence float64 `json:"averageConfidence"`
}

func toClassificationResponse(c model.Classification) classificationResponse {
	features := c.Features
	if features == nil {
		features = []model.Feature{}
	}
	return classificationResponse{
		Status:       c.Verdict,
		Confidence:   c.Confidence,
		Denomination: c.Denomination,
		Features:     features,
	}
}

func toScanResponse(s model.Scan) scanResponse {
	features := s.Features
	if features == nil {
		features = []model.Feature{}
	}
	return scanResponse{
		ID:           s.ID,
		UserID:       s.OwnerID,
		ImagePath:    s.ImageKey,
		Result:       s.Verdict,
		Confidence:   s.Confidence,
		Denomination: s.Denomination,
		Features:     features,
		CreatedAt:    s.CreatedAt.UTC(),
	}
}
