package inngest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/mauv0809/kingside/internal/compensation"
)

// New registers the compensation function on inngestClient.
func New(inngestClient inngestgo.Client, runner Runner) (InngestClient, error) {
	c := &client{
		inngestClient: inngestClient,
		runner:        runner,
	}
	if _, err := c.createCompensationFunction(); err != nil {
		return nil, fmt.Errorf("create compensation function: %w", err)
	}
	return c, nil
}

func (i *client) createCompensationFunction() (inngestgo.ServableFunction, error) {
	retries := compensation.MaxAttempts
	config := inngestgo.FunctionOpts{
		ID:      "apply-compensation",
		Name:    "Apply compensation",
		Retries: &retries,
	}
	return inngestgo.CreateFunction(
		i.inngestClient,
		config,
		inngestgo.EventTrigger(EventCompensationRequested, nil),
		func(ctx context.Context, input inngestgo.Input[CompensationData]) (any, error) {
			id := input.Event.Data.CompensationID
			if id == "" {
				return nil, errors.New("missing compensation id")
			}
			// The step is retried by Inngest until the runner stops returning errors.
			_, err := step.Run(ctx, "apply", func(ctx context.Context) (string, error) {
				if err := i.runner.ApplyCompensation(ctx, id); err != nil {
					log.Warn("Inngest compensation attempt failed", "compensationID", id, "error", err)
					return "", err
				}
				return "applied", nil
			})
			if err != nil {
				return nil, err
			}
			return "OK", nil
		},
	)
}

func (i *client) Serve() http.Handler {
	return i.inngestClient.Serve()
}

func (i *client) Dispatch(ctx context.Context, compensationID string) error {
	_, err := i.inngestClient.Send(ctx, inngestgo.Event{
		Name: EventCompensationRequested,
		Data: map[string]any{"compensationId": compensationID},
	})
	if err != nil {
		return fmt.Errorf("send inngest event: %w", err)
	}
	log.Debug("Dispatched compensation to Inngest", "compensationID", compensationID)
	return nil
}
