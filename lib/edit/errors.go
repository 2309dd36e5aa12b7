// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package edit

import (
	"fmt"

	"github.com/montage-foundation/montage/lib/opentime"
	"github.com/montage-foundation/montage/lib/timeline"
)

func invalidArgument(op, format string, args ...any) error {
	return &timeline.Error{
		Code:   timeline.CodeInvalidArgument,
		Op:     op,
		Detail: fmt.Sprintf(format, args...),
	}
}

// validRange rejects ranges no edit can apply: invalid endpoints or
// negative durations.
func validRange(op string, r opentime.TimeRange) error {
	if !r.StartTime().IsValid() || !r.Duration().IsValid() {
		return invalidArgument(op, "range %s is not valid", r)
	}
	if r.Duration().Value() < 0 {
		return invalidArgument(op, "range %s has negative duration", r)
	}
	return nil
}
