package daftconfig

import (
	"context"
	"strconv"
	"strings"

	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/gitfacade"
)

// The daft.* git-config keys that feed the Settings fields, each read
// locally then globally then defaulted.
const (
	keyAutoCD = "daft.autocd"
	keyCheckoutPush = "daft.checkout-push"
	keyCheckoutUpstream = "daft.checkout-upstream"
	keyRemote = "daft.remote"
	keyCheckoutCarry = "daft.checkout-carry"
	keyCheckoutBranchCarry = "daft.checkout-branch-carry"
	keyPruneCDTarget = "daft.prune-cd-target"
	keyFetchArgs = "daft.fetch-args"
	keyMultiRemoteEnabled = "daft.multi-remote-enabled"
	keyMultiRemoteDefault = "daft.multi-remote-default"
	keyHookEnabledPrefix = "daft.hook."
	keyHookEnabledSuffix = ".enabled"
	keyHookFailModeSuffix = ".fail-mode"
)

// lookup reads key local-first (scoped to dir), falling back to the
// global config, and reports whether either had a value.
func lookup(ctx context.Context, facade gitfacade.Facade, dir, key string) (string, bool) {
	if v, err := facade.ConfigGet(ctx, dir, key); err == nil && v != "" {
		return v, true
	}
	if v, err := facade.ConfigGetGlobal(ctx, key); err == nil && v != "" {
		return v, true
	}
	return "", false
}

func lookupBool(ctx context.Context, facade gitfacade.Facade, dir, key string, def bool) bool {
	v, ok := lookup(ctx, facade, dir, key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// LoadSettings resolves the git-config-backed Settings projection for
// the repository at dir, reading local config then global then
// applying defaults.
func LoadSettings(ctx context.Context, facade gitfacade.Facade, dir string) daftmodel.Settings {
	result := daftmodel.Settings{
		AutoCD: lookupBool(ctx, facade, dir, keyAutoCD, true),
		CheckoutPush: lookupBool(ctx, facade, dir, keyCheckoutPush, false),
		CheckoutUpstream: lookupBool(ctx, facade, dir, keyCheckoutUpstream, false),
		CheckoutCarry: lookupBool(ctx, facade, dir, keyCheckoutCarry, true),
		CheckoutBranchCarry: lookupBool(ctx, facade, dir, keyCheckoutBranchCarry, true),
		MultiRemoteEnabled: lookupBool(ctx, facade, dir, keyMultiRemoteEnabled, false),
		PruneCDTarget: daftmodel.PruneCDRoot,
		Remote: "origin",
		HookEnabled: map[daftmodel.HookEventKind]bool{},
		HookFailMode: map[daftmodel.HookEventKind]daftmodel.FailMode{},
	}

	if v, ok := lookup(ctx, facade, dir, keyRemote); ok {
		result.Remote = v
	}
	if v, ok := lookup(ctx, facade, dir, keyPruneCDTarget); ok && v == string(daftmodel.PruneCDDefaultBranch) {
		result.PruneCDTarget = daftmodel.PruneCDDefaultBranch
	}
	if v, ok := lookup(ctx, facade, dir, keyFetchArgs); ok && v != "" {
		result.FetchArgs = strings.Fields(v)
	}
	if v, ok := lookup(ctx, facade, dir, keyMultiRemoteDefault); ok {
		result.MultiRemoteDefault = v
	}

	for _, event := range []daftmodel.HookEventKind{
		daftmodel.EventPostClone, daftmodel.EventPostInit,
		daftmodel.EventWorktreePreCreate, daftmodel.EventWorktreePostCreate,
		daftmodel.EventWorktreePreRemove, daftmodel.EventWorktreePostRemove,
	} {
		base := keyHookEnabledPrefix + string(event)
		result.HookEnabled[event] = lookupBool(ctx, facade, dir, base+keyHookEnabledSuffix, true)
		if v, ok := lookup(ctx, facade, dir, base+keyHookFailModeSuffix); ok {
			result.HookFailMode[event] = daftmodel.FailMode(v)
		} else {
			result.HookFailMode[event] = daftmodel.DefaultFailMode(event)
		}
	}

	return result
}
