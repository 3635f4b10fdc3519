package services

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	appconfig "github.com/geseib/personalboard/internal/config"
)

// Advisor produces career guidance for a board snapshot. The content and
// shaping of the response is owned by the model; this interface is the
// whole contract the server depends on.
type Advisor interface {
	Advise(ctx context.Context, boardContext json.RawMessage) (string, error)
}

// BedrockAdvisor invokes a Bedrock text model with the raw board context.
type BedrockAdvisor struct {
	client  *bedrockruntime.Client
	modelID string
}

func NewBedrockAdvisor(ctx context.Context, cfg appconfig.AdvisorConfig) (*BedrockAdvisor, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &BedrockAdvisor{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: cfg.ModelID,
	}, nil
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (a *BedrockAdvisor) Advise(ctx context.Context, boardContext json.RawMessage) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        1024,
		Messages: []anthropicMessage{
			{Role: "user", Content: string(boardContext)},
		},
	})
	if err != nil {
		return "", err
	}

	contentType := "application/json"
	out, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &a.modelID,
		ContentType: &contentType,
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("invoking model: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decoding model response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("model returned no content")
	}
	return resp.Content[0].Text, nil
}

// StaticAdvisor returns a fixed response. Used in tests and when running
// without AWS credentials.
type StaticAdvisor string

func (a StaticAdvisor) Advise(context.Context, json.RawMessage) (string, error) {
	return string(a), nil
}
