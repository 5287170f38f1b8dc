// Copyright (c) 2026 Signon Team
// Signon - terminal sign-in client for remote identity services
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for Signon using Cobra.
// It wires configuration, the session store and the attempt journal, and
// provides commands that delegate to the sign-in flow. CLI code should stay
// thin; the submission semantics live in internal/flow.
package cli
