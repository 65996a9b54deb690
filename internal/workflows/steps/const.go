// SPDX-License-Identifier: Apache-2.0

package steps

// Metadata keys recorded in step reports.
const (
	MetaManager         = "manager"
	MetaPackage         = "package"
	MetaFromVersion     = "fromVersion"
	MetaToVersion       = "toVersion"
	MetaAlreadyUpToDate = "alreadyUpToDate"
	MetaInstructions    = "instructions"
)
