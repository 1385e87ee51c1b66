// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strconv"
	"time"

	"github.com/MKhiriev/go-biz-sync/models"
)

// StatusView is everything the status page shows.
type StatusView struct {
	BusinessID string
	Version    string
	Status     models.SyncStatus
}

// RenderStatus renders the sync status page of the agent.
func RenderStatus(v StatusView) string {
	connectivity := offlineStyle.Render("offline")
	if v.Status.IsOnline {
		connectivity = onlineStyle.Render("online")
	}

	lastSync := "never"
	if v.Status.LastSync != nil {
		lastSync = v.Status.LastSync.Local().Format(time.DateTime)
	}

	deadLetters := strconv.Itoa(v.Status.DeadLetters)
	if v.Status.DeadLetters > 0 {
		deadLetters = warnStyle.Render(deadLetters)
	}

	rows := [][2]string{
		{"Business", valueOrNA(v.BusinessID)},
		{"Connectivity", connectivity},
		{"Last sync", lastSync},
		{"Pending operations", strconv.Itoa(v.Status.PendingOperations)},
		{"Dead letters", deadLetters},
	}
	if v.Status.Syncing {
		rows = append(rows, [2]string{"Sync", "in progress"})
	}

	return renderPage("SYNC STATUS", renderRows(rows), "version "+valueOrNA(v.Version))
}
