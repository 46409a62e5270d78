package metric

import (
	"context"
	"time"

	"evtd/src-server/model"
	"evtd/src-server/utils"
)

func database(ctx context.Context, as *utils.AppState) (time.Duration, error) {
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Event)(nil)).
		Where("event_id = ?", -1).
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
