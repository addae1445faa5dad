/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

// Notification is an outbound event for the host. Drain returns them in
// the order they were raised.
type Notification interface{ notification() }

// FeedWaitingEvent: Box reached a page wait; Wait is the reveal time still
// pending on its last character.
type FeedWaitingEvent struct {
	Box  string
	Wait float64
}

// StartFeedingEvent: Box started clearing Area for the next page.
type StartFeedingEvent struct {
	Box  string
	Area string
}

// ButtonIsSelected: the selection moved to Area.
type ButtonIsSelected struct {
	Box  string
	Area string
	Axis Axis
	Rank int
}

// ButtonIsPushed: the gate on Area was activated.
type ButtonIsPushed struct {
	Box  string
	Area string
}

// FinisClosingBox: Box finished closing and was torn down. Detached lists
// external handles that were parked under it.
type FinisClosingBox struct {
	Box      string
	Detached []string
}

// ChoosenEvent: a choice button was picked; Payload is its bound directive.
type ChoosenEvent struct {
	Payload   string
	ChoiceBox string
}

func (FeedWaitingEvent) notification()  {}
func (StartFeedingEvent) notification() {}
func (ButtonIsSelected) notification()  {}
func (ButtonIsPushed) notification()    {}
func (FinisClosingBox) notification()   {}
func (ChoosenEvent) notification()      {}
