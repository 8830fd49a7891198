// Package harness runs YAML scenarios against the numbering engine.
//
// Each scenario gets its own throwaway index seeded from the default
// dataset or a scenario-supplied one, a fixed clock that ticks one second
// per step, and a fixed export id, so traces are reproducible and can be
// compared against golden files.
//
// # Scenario Format
//
//	name: folder_numbers_are_never_reused
//	description: "A deleted folder's number is not handed out again"
//	seed: seeds/minimal.yaml     # optional, relative to this file
//	clock: "2024-01-15T10:00:00Z" # optional
//	setup:
//	  - op: folder.create
//	    args: { category_id: 2, name: Taxes }
//	flow:
//	  - op: folder.delete
//	    args: { id: 1 }
//	  - op: folder.next
//	    args: { category_id: 2 }
//	    expect:
//	      result: { number: "11.02", ok: true }
//	  - op: category.delete
//	    args: { id: 99 }
//	    expect:
//	      error: NOT_FOUND
//	assertions:
//	  - type: activity_contains
//	    entry: { action: delete, entity_type: folder, entity_number: "11.01" }
//	  - type: final_state
//	    table: folders
//	    where: { id: 2 }
//	    expect: { folder_number: "11.02" }
//
// Ops are named entity.verb (area, category, folder, item, location with
// create, get, list, update, delete; folder.next and item.next) plus
// search, stats, activity, reset and snapshot. Create takes the entity's
// JSON fields; update takes id and a set map.
//
// # Assertion Types
//
//   - activity_contains: some activity entry matches entry
//   - activity_order: entries match in order, gaps allowed
//   - activity_count: exactly count entries match entry
//   - final_state: exactly one row of table matches where, and has expect
//   - row_count: exactly count rows of table match where
package harness
