package store

import "context"

type Event struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	MaxAttendance int64  `json:"maxAttendance"`
	Owner         string `json:"owner"`
}

type CallerCtxKeyType string

const CallerCtxKey CallerCtxKeyType = "caller"

// WithCaller attaches the identity of whoever issues the next store call.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, CallerCtxKey, caller)
}

// CallerFrom returns the caller set by WithCaller, or "" for anonymous calls.
func CallerFrom(ctx context.Context) string {
	caller, _ := ctx.Value(CallerCtxKey).(string)
	return caller
}
