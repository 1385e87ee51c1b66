// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/MKhiriev/go-biz-sync/models"

// RenderBuildInfo renders the build metadata block printed on startup.
func RenderBuildInfo(info models.AppBuildInfo) string {
	return boxStyle.Render(renderRows([][2]string{
		{"Build version", valueOrNA(info.BuildVersion())},
		{"Build date", valueOrNA(info.BuildDate())},
		{"Build commit", valueOrNA(info.BuildCommit())},
	}))
}
