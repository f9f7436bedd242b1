// Package configuration groups devices and licenses into named
// configurations and enforces that every asset has at most one owner.
//
// # Ownership rules
//
// The repository is permissive: assigning a device twice is a silent no-op
// and assigning a license upserts it away from its previous owner. The
// Service adds the policy on top:
//
//   - Assign: a free asset joins the configuration; the current owner is a
//     no-op; any other owner is rejected with an *OwnershipError
//   - Move: one transaction; the asset must be in the source configuration
//     or free, and a move onto itself does nothing
//   - Unassign: removing an asset the configuration does not hold does nothing
//
// The same first-owner-wins rule applies to devices and licenses.
//
// # Numbering
//
// A configuration created without a number receives CNFG-{id:03d}, derived
// from the id the row actually got, inside the insert transaction.
// Renaming changes only the name; updated_at is not bumped.
package configuration
