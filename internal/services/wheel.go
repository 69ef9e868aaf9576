package services

import (
	"math/rand"

	"github.com/spinspot/server/internal/category"
	"github.com/spinspot/server/internal/models"
)

// WheelService runs the game: filter candidate spots through the category
// safety net, then pick one at weighted random.
type WheelService struct {
	policy *category.Policy
	rng    *rand.Rand
}

// NewWheelService creates a WheelService. rng may be nil, in which case the
// global source is used; tests inject a seeded source.
func NewWheelService(policy *category.Policy, rng *rand.Rand) *WheelService {
	return &WheelService{policy: policy, rng: rng}
}

// SpinResult is one spin outcome: the pick plus how many candidates the
// policy let onto the wheel.
type SpinResult struct {
	Pick           models.Spot `json:"pick"`
	CandidateCount int         `json:"candidate_count"`
	RejectedCount  int         `json:"rejected_count"`
}

// Spin filters candidates against the policy for the given intent and picks
// one by weight. The policy is a redundant check; candidates are expected to
// be pre-filtered upstream.
func (s *WheelService) Spin(candidates []models.Spot, intent string) (*SpinResult, error) {
	valid := make([]models.Spot, 0, len(candidates))
	for _, spot := range candidates {
		if s.policy.IsValid(spot, intent) {
			valid = append(valid, spot)
		}
	}

	if len(valid) == 0 {
		return nil, ErrNoCandidates
	}

	total := 0
	for _, spot := range valid {
		total += weightOf(spot)
	}

	roll := s.intn(total)
	for _, spot := range valid {
		roll -= weightOf(spot)
		if roll < 0 {
			return &SpinResult{
				Pick:           spot,
				CandidateCount: len(valid),
				RejectedCount:  len(candidates) - len(valid),
			}, nil
		}
	}

	// Unreachable: the roll is always consumed within the loop.
	return &SpinResult{Pick: valid[len(valid)-1], CandidateCount: len(valid)}, nil
}

func (s *WheelService) intn(n int) int {
	if s.rng != nil {
		return s.rng.Intn(n)
	}
	return rand.Intn(n)
}

func weightOf(spot models.Spot) int {
	if spot.Weight <= 0 {
		return 1
	}
	return spot.Weight
}
