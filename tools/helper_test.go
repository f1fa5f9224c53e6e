package tools

import "github.com/jd-opensource/oxygent-go/oxy"

func reqWithArgs(args map[string]any) *oxy.Request {
	return oxy.NewRequest("tool-under-test", args)
}
