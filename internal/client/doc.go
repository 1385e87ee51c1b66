// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync agent runtime.
//
// It wires the local store, the remote document store client, the
// connectivity monitor and the synchronization services into a single
// process lifecycle, and renders the status view for the -status mode.
package client
