package contracts

import (
	"context"
)

// MutationHook is invoked synchronously by the store after a deal update lands.
// Hooks own their failures: a hook must not assume it can abort or roll back the write.
// ⭐ SSOT: 저장소 후처리 훅 인터페이스
type MutationHook interface {
	AfterUpdate(ctx context.Context, before, after Deal)
}

// MutationHooks runs a list of hooks in registration order
type MutationHooks []MutationHook

// AfterUpdate calls every hook
func (h MutationHooks) AfterUpdate(ctx context.Context, before, after Deal) {
	for _, hook := range h {
		hook.AfterUpdate(ctx, before, after)
	}
}
