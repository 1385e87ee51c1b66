// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package network tracks device connectivity for the sync agent.
//
// [Monitor] is a small state machine holding a single online flag. It never
// performs network I/O itself: the platform signal (or, for the headless
// agent, the [HealthProber] worker) calls [Monitor.SetOnline], and an
// offline to online transition fires every callback registered with
// [Monitor.OnReconnect].
package network
