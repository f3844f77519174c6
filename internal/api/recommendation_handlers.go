package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/shelfmatch/internal/domain"
	"github.com/listenupapp/shelfmatch/internal/recommend"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recommend",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations",
		Summary:     "Rank books",
		Description: "Scores every book against the given preferences and returns them best match first",
		Tags:        []string{"Recommendations"},
	}, s.handleRecommend)
}

// === DTOs ===

// RecommendRequest describes a reader's preferences. Empty or "any" values
// leave a criterion inactive.
type RecommendRequest struct {
	GenreIntent   string `json:"genre_intent,omitempty" validate:"max=200" doc:"Genre intent to match"`
	Pace          string `json:"pace,omitempty" validate:"max=200" doc:"Pace to match"`
	PlotCharacter string `json:"plot_character,omitempty" validate:"max=200" doc:"Plot or character focus to match"`
	MoodFinish    string `json:"mood_finish,omitempty" validate:"max=200" doc:"Mood at finish to match"`
	Length        string `json:"length,omitempty" validate:"lengthcat" doc:"short, medium, long, epic or any"`
}

// RecommendInput wraps the recommend request for Huma.
type RecommendInput struct {
	Body RecommendRequest
}

// ScoredBook is one ranked book.
type ScoredBook struct {
	Book    BookResponse   `json:"book" doc:"Catalog record"`
	Score   int            `json:"match_score" doc:"Criteria matched"`
	Matched []domain.Field `json:"matched" doc:"Fields that matched"`
}

// RecommendResponse is a full ranking of the catalog.
type RecommendResponse struct {
	Books    []ScoredBook `json:"books" doc:"Books best match first"`
	MaxScore int          `json:"max_score" doc:"Number of active criteria"`
}

// RecommendOutput wraps the recommend response for Huma.
type RecommendOutput struct {
	Body RecommendResponse
}

// === Handlers ===

func (s *Server) handleRecommend(ctx context.Context, input *RecommendInput) (*RecommendOutput, error) {
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}

	ranking, err := s.services.Catalog.Recommend(ctx, domain.PreferenceQuery{
		GenreIntent:   input.Body.GenreIntent,
		Pace:          input.Body.Pace,
		PlotCharacter: input.Body.PlotCharacter,
		MoodFinish:    input.Body.MoodFinish,
		Length:        domain.LengthCategory(input.Body.Length),
	})
	if err != nil {
		return nil, err
	}

	return &RecommendOutput{Body: toRecommendResponse(ranking)}, nil
}

func toRecommendResponse(r *recommend.Ranking) RecommendResponse {
	books := make([]ScoredBook, len(r.Books))
	for i, sb := range r.Books {
		books[i] = ScoredBook{
			Book:    toBookResponse(sb.Book),
			Score:   sb.Score,
			Matched: nonNil(sb.Matched),
		}
	}
	return RecommendResponse{Books: books, MaxScore: r.MaxScore}
}
