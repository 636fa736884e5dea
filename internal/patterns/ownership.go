package patterns

import "context"

type contextKey string

const patternCtxKey contextKey = "pattern"

func SetPatternInContext(ctx context.Context, p *Pattern) context.Context {
	return context.WithValue(ctx, patternCtxKey, p)
}

func GetPatternFromContext(ctx context.Context) *Pattern {
	p, _ := ctx.Value(patternCtxKey).(*Pattern)
	return p
}
