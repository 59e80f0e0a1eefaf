package advisor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Chat is the part of a Gemini chat session used by an Expert.
type Chat interface {
	Send(ctx context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error)
}

// Expert is a chat with a model that can call the functions of its Library.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	chat        Chat
	log         zerolog.Logger
}

// Start opens the chat session.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return errors.Wrapf(err, "cannot start chat with %s", e.Name)
	}
	e.chat = chat
	return nil
}

// Ask sends parts to the expert and returns its answer, serving the function
// calls it makes along the way.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	if e.chat == nil {
		return nil, errors.Errorf("expert %s is not started", e.Name)
	}
	resp, err := e.chat.Send(ctx, parts...)
	if err != nil {
		return nil, errors.Wrapf(err, "%s failed to answer", e.Name)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.Errorf("no response from expert %s", e.Name)
	}

	var responses []*genai.Part
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall == nil {
			continue
		}
		if e.Library == nil {
			return nil, errors.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}
		e.log.Debug().Str("function", part.FunctionCall.Name).Interface("args", part.FunctionCall.Args).Msg("function call")
		responses = append(responses, &genai.Part{FunctionResponse: e.Library(ctx, part.FunctionCall)})
	}
	if len(responses) > 0 {
		// ask again with the responses until we have a real answer.
		return e.Ask(ctx, responses...)
	}
	return resp.Candidates[0].Content, nil
}

// Text returns the text parts of a content, concatenated.
func Text(content *genai.Content) string {
	var s string
	for _, part := range content.Parts {
		s += part.Text
	}
	return s
}
