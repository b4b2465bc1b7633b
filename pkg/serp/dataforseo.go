package serp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"
)

const dataForSEOBaseURL = "https://api.dataforseo.com"

// DataForSEO API status code for success.
const dataForSEOStatusOK = 20000

// ErrNoCredentials is returned when the DataForSEO login or password is
// missing from the configuration and environment.
var ErrNoCredentials = errors.New("dataforseo credentials not configured")

// DataForSEO fetches Google organic results through the DataForSEO
// live/advanced SERP endpoint.
type DataForSEO struct {
	client   *http.Client
	baseURL  string
	login    string
	password string
	location string
	language string
	depth    int
}

// NewDataForSEO creates a DataForSEO provider. Location defaults to
// "United States", language to "en" and depth to 50.
func NewDataForSEO(login, password, location, language string, depth int) *DataForSEO {
	if location == "" {
		location = "United States"
	}
	if language == "" {
		language = "en"
	}
	if depth <= 0 {
		depth = 50
	}
	return &DataForSEO{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  dataForSEOBaseURL,
		login:    login,
		password: password,
		location: location,
		language: language,
		depth:    depth,
	}
}

func (d *DataForSEO) Name() string { return "dataforseo" }

type dfsTask struct {
	Keyword      string `json:"keyword"`
	LocationName string `json:"location_name"`
	LanguageCode string `json:"language_code"`
	Depth        int    `json:"depth"`
}

type dfsResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []struct {
			Items []struct {
				Type         string `json:"type"`
				RankAbsolute int    `json:"rank_absolute"`
				Title        string `json:"title"`
				URL          string `json:"url"`
				Description  string `json:"description"`
			} `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

func (d *DataForSEO) Fetch(ctx context.Context, keyword string) ([]RawResult, error) {
	if d.login == "" || d.password == "" {
		return nil, ErrNoCredentials
	}

	// The API takes an array of tasks; we always post exactly one.
	body, err := json.Marshal([]dfsTask{{
		Keyword:      keyword,
		LocationName: d.location,
		LanguageCode: d.language,
		Depth:        d.depth,
	}})
	if err != nil {
		return nil, fmt.Errorf("marshal serp task: %w", err)
	}

	url := d.baseURL + "/v3/serp/google/organic/live/advanced"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create serp request: %w", err)
	}
	req.SetBasicAuth(d.login, d.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch serp for %q: %w", keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataforseo status %d", resp.StatusCode)
	}

	var parsed dfsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode serp response: %w", err)
	}

	if parsed.StatusCode != dataForSEOStatusOK {
		return nil, fmt.Errorf("dataforseo error %d: %s", parsed.StatusCode, parsed.StatusMessage)
	}
	if len(parsed.Tasks) == 0 {
		return nil, fmt.Errorf("dataforseo returned no tasks")
	}
	task := parsed.Tasks[0]
	if task.StatusCode != dataForSEOStatusOK {
		return nil, fmt.Errorf("dataforseo task error %d: %s", task.StatusCode, task.StatusMessage)
	}
	if len(task.Result) == 0 {
		return nil, nil
	}

	var results []RawResult
	for _, item := range task.Result[0].Items {
		results = append(results, RawResult{
			Rank:        item.RankAbsolute,
			Title:       item.Title,
			URL:         item.URL,
			Snippet:     item.Description,
			SerpFeature: item.Type,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rank < results[j].Rank
	})
	return results, nil
}
