package gpt

import (
	"context"

	gpt "github.com/m-ariany/gpt-chat-client"
)

type ClientConfig = gpt.ClientConfig

// Prompter sends a single instruction in a fresh conversation and returns the answer.
type Prompter interface {
	Prompt(ctx context.Context, instruction string) (string, error)
}

type ClientFactory struct {
	client *gpt.Client
}

var _ Prompter = (*ClientFactory)(nil)

func NewClientFactory(cnf ClientConfig) (*ClientFactory, error) {
	client, err := gpt.NewClient(cnf)
	if err != nil {
		return nil, err
	}
	return &ClientFactory{client: client}, nil
}

// Client returns a clone that does not share conversation history with other callers.
func (f *ClientFactory) Client() Client {
	return Client{Client: f.client.Clone()}
}

func (f *ClientFactory) Prompt(ctx context.Context, instruction string) (string, error) {
	c := f.Client()
	c.Instruct(instruction)
	return c.Client.Prompt(ctx, "")
}

type Client struct {
	*gpt.Client
}
