package host

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/vaiulabs/bistro-host/agent/contract"
	hostnode "github.com/vaiulabs/bistro-host/agent/nodes"
	statex "github.com/vaiulabs/bistro-host/agent/state"
)

func (h *Host) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[hostnode.GraphInput, hostnode.GraphOutput], error) {
	graph := compose.NewGraph[hostnode.GraphInput, hostnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_turn",
		compose.InvokableLambda(func(ctx context.Context, in hostnode.GraphInput) (*hostnode.GraphState, error) {
			return hostnode.ValidateTurn(in, h.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_turn: %w", err)
	}

	if err := graph.AddLambdaNode("load_session",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (*hostnode.GraphState, error) {
			return hostnode.LoadOrCreateSession(ctx, in, h.store, h.channelType)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("extract_slots",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (*hostnode.GraphState, error) {
			return hostnode.ExtractSlots(ctx, in, h.models.Extractor())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_slots: %w", err)
	}

	if err := graph.AddLambdaNode("apply_slots",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (*hostnode.GraphState, error) {
			return hostnode.ApplySlots(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node apply_slots: %w", err)
	}

	if err := graph.AddLambdaNode("enrich_weather",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (*hostnode.GraphState, error) {
			return hostnode.EnrichWeather(ctx, in, h.weather)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node enrich_weather: %w", err)
	}

	if err := graph.AddLambdaNode("decide_collecting",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (*hostnode.GraphState, error) {
			return hostnode.DecideCollecting(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node decide_collecting: %w", err)
	}

	if err := graph.AddLambdaNode("handle_confirmation",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (*hostnode.GraphState, error) {
			return hostnode.HandleConfirmation(ctx, in, h.models.Classifier(), h.bookings)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node handle_confirmation: %w", err)
	}

	if err := graph.AddLambdaNode("compose_reply",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (*hostnode.GraphState, error) {
			return hostnode.ComposeReply(ctx, in, h.models.Composer())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_reply: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (*hostnode.GraphState, error) {
			return hostnode.SaveSession(ctx, in, h.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *hostnode.GraphState) (hostnode.GraphOutput, error) {
			return hostnode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	// Collecting turns run the extraction path; confirmation turns go
	// straight to the gate. Both converge on compose_reply.
	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *hostnode.GraphState) (string, error) {
			if in == nil || in.Session == nil {
				return "", fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
			}
			switch in.Session.Status {
			case statex.StatusCollecting:
				return "extract_slots", nil
			case statex.StatusAwaitingConfirmation:
				return "handle_confirmation", nil
			default:
				return "", fmt.Errorf("%w: unexpected status=%s", contractx.ErrValidation, in.Session.Status)
			}
		},
		map[string]bool{
			"extract_slots":       true,
			"handle_confirmation": true,
		},
	)
	if err := graph.AddBranch("load_session", branch); err != nil {
		return nil, fmt.Errorf("add turn branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_turn"},
		{"validate_turn", "load_session"},
		{"extract_slots", "apply_slots"},
		{"apply_slots", "enrich_weather"},
		{"enrich_weather", "decide_collecting"},
		{"decide_collecting", "compose_reply"},
		{"handle_confirmation", "compose_reply"},
		{"compose_reply", "save_session"},
		{"save_session", "finalize_reply"},
		{"finalize_reply", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("host.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile host turn graph: %w", err)
	}
	return runner, nil
}
