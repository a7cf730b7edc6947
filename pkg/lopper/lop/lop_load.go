package lop

import (
	"strings"

	"github.com/sdt-tools/lopper/pkg/lopper"
	"github.com/sdt-tools/lopper/pkg/lopper/assist"
	"github.com/sdt-tools/lopper/pkg/lopper/assist/builtin/notify"
	"github.com/sdt-tools/lopper/pkg/lopper/assist/builtin/s3"
	"github.com/sdt-tools/lopper/pkg/lopper/assist/builtin/vault"
)

// loadHandler implements the "load" lop kind: register an assist
// module by name in the run's assist registry before any assist-v1
// lop can dispatch to it.
//
// Go has no portable story for loading arbitrary compiled plug-ins at
// runtime (the plugin package is linux-only and ties a loaded .so to
// the exact toolchain that built the host binary), so `load` here
// resolves against a small builtin table instead of an on-disk path.
// A lop tree still says `load = "vault";`; it just can't point at an
// arbitrary out-of-tree .so.
type loadHandler struct{}

func (loadHandler) Run(ctx *Context, node *lopper.Node) error {
	p, ok := node.Property("load")
	if !ok {
		return lopper.NewError(lopper.LopMalformed, node.AbsPath(), "load lop missing `load` property", nil)
	}
	name, _ := p.Value.AsString()

	var a assist.Assist
	var err error
	switch name {
	case "vault":
		a, err = vault.New()
	case "s3":
		a, err = s3.New()
	case "notify":
		url, _ := stringProp(node, "notify-url")
		subject, _ := stringProp(node, "notify-subject")
		if url == "" {
			url = "nats://127.0.0.1:4222"
		}
		if subject == "" {
			subject = "lopper.events"
		}
		a, err = notify.New(url, subject)
	default:
		msg := "unknown assist \"" + name + "\""
		if len(ctx.AssistSearchPath) > 0 {
			msg += " (also not found under " + strings.Join(ctx.AssistSearchPath, ", ") + ")"
		}
		return lopper.NewError(lopper.AssistLoadFailure, node.AbsPath(), msg, nil)
	}
	if err != nil {
		if ctx.Permissive {
			return lopper.NewWarning("load lop: %s: %v", name, err)
		}
		return lopper.NewError(lopper.AssistLoadFailure, node.AbsPath(), err.Error(), err)
	}
	ctx.Assists.Register(a)
	return nil
}

func stringProp(node *lopper.Node, name string) (string, bool) {
	p, ok := node.Property(name)
	if !ok {
		return "", false
	}
	return p.Value.AsString()
}
