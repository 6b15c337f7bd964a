package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sentiment-cli/internal/model"
)

// maxInputRunes bounds the text sent to the classifier, which itself
// truncates to 256 tokens.
const maxInputRunes = 2048

// ClassifierOptions configures a Classifier.
type ClassifierOptions struct {
	// Endpoint receives POST {"inputs": text} and answers with
	// [{label, score}] or [[{label, score}]].
	Endpoint string
	// LabelsURL optionally serves a model config with an id2label map used
	// to translate generic LABEL_n names.
	LabelsURL string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
}

// Classifier scores text with a pretrained sentiment classifier served over
// HTTP. Compound is P(positive) - P(negative).
type Classifier struct {
	opts   ClassifierOptions
	http   *http.Client
	labels map[string]string

	mu          sync.Mutex // guards labels and initialized during init
	initialized bool
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewClassifier creates a Classifier. Call EnsureInitialized before the
// first Score, or let Score do it.
func NewClassifier(opts ClassifierOptions) *Classifier {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Classifier{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
	}
}

// EnsureInitialized loads the label map once. Later calls are no-ops. It is
// safe to call from concurrent scorers; a failed load is retried next call.
func (c *Classifier) EnsureInitialized(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if c.opts.Endpoint == "" {
		return eris.New("sentiment: classifier endpoint not configured")
	}

	labels := map[string]string{}
	if c.opts.LabelsURL != "" {
		var cfg struct {
			ID2Label map[string]string `json:"id2label"`
		}
		if err := c.do(ctx, http.MethodGet, c.opts.LabelsURL, nil, &cfg); err != nil {
			return eris.Wrap(err, "sentiment: load classifier labels")
		}
		for id, name := range cfg.ID2Label {
			name = strings.ToLower(name)
			labels["label_"+id] = name
			labels[id] = name
		}
	}

	c.labels = labels
	c.initialized = true
	zap.L().Info("classifier initialized",
		zap.String("endpoint", c.opts.Endpoint),
		zap.Int("labels", len(labels)),
	)
	return nil
}

// Score implements Scorer.
func (c *Classifier) Score(ctx context.Context, text string) (model.Scores, error) {
	if isBlank(text) {
		return model.NeutralScores, nil
	}
	if err := c.EnsureInitialized(ctx); err != nil {
		return model.Scores{}, err
	}

	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > maxInputRunes {
		text = string(r[:maxInputRunes])
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.opts.Endpoint, map[string]any{"inputs": text}, &raw); err != nil {
		return model.Scores{}, eris.Wrap(err, "sentiment: classify")
	}
	preds, err := decodePredictions(raw)
	if err != nil {
		return model.Scores{}, err
	}

	probs := make(map[string]float64, len(preds))
	for _, p := range preds {
		probs[c.labelName(p.Label)] = p.Score
	}
	pos, neu, neg := probs["positive"], probs["neutral"], probs["negative"]
	return model.Scores{Neg: neg, Neu: neu, Pos: pos, Compound: pos - neg}, nil
}

func (c *Classifier) labelName(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if name, ok := c.labels[l]; ok {
		return name
	}
	return l
}

func decodePredictions(raw json.RawMessage) ([]labelScore, error) {
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, eris.Wrap(err, "sentiment: decode predictions")
	}
	if len(nested) == 0 {
		return nil, nil
	}
	return nested[0], nil
}

func (c *Classifier) do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return eris.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
