package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	QuestionCount = 4
	difficulty    = "easy"
	questionType  = "multiple"
)

// Question is one multiple choice trivia question with HTML entities decoded.
type Question struct {
	Category         string
	Question         string
	CorrectAnswer    string
	IncorrectAnswers []string
}

type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

// Client fetches questions from the Open Trivia DB.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("opentdb"),
	}
}

// FetchQuestions returns QuestionCount easy questions. category 0 means any category.
func (c *Client) FetchQuestions(ctx context.Context, category int) ([]Question, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider url: %w", err)
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(QuestionCount))
	q.Set("difficulty", difficulty)
	q.Set("type", questionType)
	if category > 0 {
		q.Set("category", strconv.Itoa(category))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("provider returned response code %d", body.ResponseCode)
	}
	if len(body.Results) != QuestionCount {
		return nil, fmt.Errorf("provider returned %d questions, want %d", len(body.Results), QuestionCount)
	}

	out := make([]Question, 0, len(body.Results))
	for _, r := range body.Results {
		incorrect := make([]string, len(r.IncorrectAnswers))
		for i, a := range r.IncorrectAnswers {
			incorrect[i] = html.UnescapeString(a)
		}
		out = append(out, Question{
			Category:         html.UnescapeString(r.Category),
			Question:         html.UnescapeString(r.Question),
			CorrectAnswer:    html.UnescapeString(r.CorrectAnswer),
			IncorrectAnswers: incorrect,
		})
	}

	c.logger.Debug("Fetched quiz questions", zap.Int("category", category))
	return out, nil
}
