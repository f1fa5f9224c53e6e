package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jd-opensource/oxygent-go/oxy"
	"github.com/jd-opensource/oxygent-go/types"
)

var currentTimeSchema = json.RawMessage(`{
	"type": "object",
	"properties": {"query": {"type": "string", "description": "IANA timezone name, e.g. Asia/Shanghai; empty means UTC"}}
}`)

// NewCurrentTimeTool returns an operator reporting the current time in a
// requested timezone. now is injectable for tests; nil uses time.Now.
func NewCurrentTimeTool(now func() time.Time, logger *zap.Logger) oxy.Oxy {
	if now == nil {
		now = time.Now
	}
	return oxy.NewFunctionTool("current_time", "Get the current date and time in a timezone.", currentTimeSchema,
		func(_ context.Context, args map[string]any) (string, error) {
			zone, _ := args["query"].(string)
			loc := time.UTC
			if zone != "" {
				var err error
				loc, err = time.LoadLocation(zone)
				if err != nil {
					return "", types.NewError(types.ErrToolValidation,
						fmt.Sprintf("unknown timezone %q", zone))
				}
			}
			t := now().In(loc)
			return fmt.Sprintf("Current time in %s: %s", loc.String(), t.Format("2006-01-02 15:04:05 MST")), nil
		}, logger)
}
