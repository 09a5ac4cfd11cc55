package tools

import "context"

func (r *Registry) timeTool() *Tool {
	return &Tool{
		Name:        "Time",
		Description: "Useful for when you need to know the current time.",
		Spec:        nil,
		Handler: func(ctx context.Context, call *Call) (string, error) {
			return r.deps.Clock().Format("3:04 PM"), nil
		},
	}
}
