// SPDX-License-Identifier: ISC
// Copyright (c) 2020-2026 Lambda Foundation
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"time"

	"github.com/lambda-foundation/lambdad/vote"
)

// DefaultThreshold - fraction of total confidence the majority must
// hold before a resolution is acted on
const DefaultThreshold = 0.66

// Result - the settled view of one verification request
type Result struct {
	Agreement    float64      `json:"agreement"`
	Majority     vote.Kind    `json:"majority"`
	Votes        []*vote.Vote `json:"votes"`
	Outliers     []*vote.Vote `json:"outliers"`
	Participants int          `json:"participants"`
	Timestamp    time.Time    `json:"timestamp"`
}

// Reached - true when the agreement clears the threshold
func (result *Result) Reached(threshold float64) bool {
	return result.Agreement >= threshold
}
