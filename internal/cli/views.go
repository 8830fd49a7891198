package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmeg8r/jdex/internal/console"
	"github.com/jmeg8r/jdex/internal/jd"
)

// Text-mode views. Each type marshals to JSON exactly like the engine
// value it wraps.

type areaList []jd.Area

func (l areaList) Text() string {
	rows := make([][]string, 0, len(l))
	for _, a := range l {
		rows = append(rows, []string{
			itoa(a.ID), areaRange(a), a.Name, a.Color, a.Description,
		})
	}
	return renderTable([]string{"ID", "RANGE", "NAME", "COLOR", "DESCRIPTION"}, rows)
}

type categoryList []jd.CategoryView

func (l categoryList) Text() string {
	rows := make([][]string, 0, len(l))
	for _, c := range l {
		rows = append(rows, []string{
			itoa(c.ID), jd.FormatCategoryNumber(c.Number), c.Name, c.AreaName,
		})
	}
	return renderTable([]string{"ID", "NUMBER", "NAME", "AREA"}, rows)
}

type folderList []jd.FolderView

func (l folderList) Text() string {
	rows := make([][]string, 0, len(l))
	for _, f := range l {
		rows = append(rows, []string{
			itoa(f.ID), f.FolderNumber, f.Name, string(f.Sensitivity), f.Location, f.CategoryName,
		})
	}
	return renderTable([]string{"ID", "NUMBER", "NAME", "SENSITIVITY", "LOCATION", "CATEGORY"}, rows)
}

type itemList []jd.ItemView

func (l itemList) Text() string {
	rows := make([][]string, 0, len(l))
	for _, it := range l {
		rows = append(rows, []string{
			itoa(it.ID), it.ItemNumber, it.Name, it.FileType, sensitivityCell(it), it.Location,
		})
	}
	return renderTable([]string{"ID", "NUMBER", "NAME", "TYPE", "SENSITIVITY", "LOCATION"}, rows)
}

// sensitivityCell marks inherited tiers so the reader can tell them apart.
func sensitivityCell(it jd.ItemView) string {
	if it.Sensitivity == jd.SensitivityInherit {
		return string(it.EffectiveSensitivity) + " (inherited)"
	}
	return string(it.EffectiveSensitivity)
}

type locationList []jd.StorageLocation

func (l locationList) Text() string {
	rows := make([][]string, 0, len(l))
	for _, loc := range l {
		rows = append(rows, []string{
			itoa(loc.ID), loc.Name, loc.Type, loc.Path, yesNo(loc.IsEncrypted),
		})
	}
	return renderTable([]string{"ID", "NAME", "TYPE", "PATH", "ENCRYPTED"}, rows)
}

type activityList []jd.ActivityEntry

func (l activityList) Text() string {
	if len(l) == 0 {
		return "No activity recorded."
	}
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		rows = append(rows, []string{
			e.Timestamp, string(e.Action), string(e.EntityType), e.EntityNumber, e.Details,
		})
	}
	return renderTable([]string{"TIME", "ACTION", "ENTITY", "NUMBER", "DETAILS"}, rows)
}

type folderDetail jd.FolderView

func (f folderDetail) Text() string {
	return keyValues([][2]string{
		{"ID", itoa(f.ID)},
		{"Number", f.FolderNumber},
		{"Name", f.Name},
		{"Category", jd.FormatCategoryNumber(f.CategoryNumber) + " " + f.CategoryName},
		{"Area", f.AreaName},
		{"Sensitivity", string(f.Sensitivity)},
		{"Location", f.Location},
		{"Storage path", f.StoragePath},
		{"Keywords", f.Keywords},
		{"Description", f.Description},
		{"Notes", f.Notes},
		{"Created", f.CreatedAt},
		{"Updated", f.UpdatedAt},
	})
}

type itemDetail jd.ItemView

func (it itemDetail) Text() string {
	size := ""
	if it.FileSize != nil {
		size = strconv.FormatInt(*it.FileSize, 10)
	}
	return keyValues([][2]string{
		{"ID", itoa(it.ID)},
		{"Number", it.ItemNumber},
		{"Name", it.Name},
		{"Folder", it.FolderNumber + " " + it.FolderName},
		{"Category", jd.FormatCategoryNumber(it.CategoryNumber) + " " + it.CategoryName},
		{"Area", it.AreaName},
		{"Sensitivity", sensitivityCell(jd.ItemView(it))},
		{"File type", it.FileType},
		{"File size", size},
		{"Location", it.Location},
		{"Storage path", it.StoragePath},
		{"Keywords", it.Keywords},
		{"Description", it.Description},
		{"Notes", it.Notes},
		{"Created", it.CreatedAt},
		{"Updated", it.UpdatedAt},
	})
}

type statsView jd.Stats

func (s statsView) Text() string {
	return keyValues([][2]string{
		{"Areas", strconv.Itoa(s.TotalAreas)},
		{"Categories", strconv.Itoa(s.TotalCategories)},
		{"Folders", strconv.Itoa(s.TotalFolders)},
		{"  standard", strconv.Itoa(s.StandardFolders)},
		{"  sensitive", strconv.Itoa(s.SensitiveFolders)},
		{"  work", strconv.Itoa(s.WorkFolders)},
		{"Items", strconv.Itoa(s.TotalItems)},
		{"  inherit", strconv.Itoa(s.InheritItems)},
		{"  standard", strconv.Itoa(s.StandardItems)},
		{"  sensitive", strconv.Itoa(s.SensitiveItems)},
		{"  work", strconv.Itoa(s.WorkItems)},
	})
}

type searchView jd.SearchResult

func (s searchView) Text() string {
	if len(s.Folders) == 0 && len(s.Items) == 0 {
		return "No matches."
	}
	var b strings.Builder
	if len(s.Folders) > 0 {
		fmt.Fprintf(&b, "Folders (%d)\n%s\n", len(s.Folders), folderList(s.Folders).Text())
	}
	if len(s.Items) > 0 {
		fmt.Fprintf(&b, "Items (%d)\n%s\n", len(s.Items), itemList(s.Items).Text())
	}
	return strings.TrimRight(b.String(), "\n")
}

// allocationView is the answer to "next number".
type allocationView struct {
	jd.Allocation
	Ready bool `json:"ready"`
}

func (a allocationView) Text() string {
	if !a.Ready {
		return "No parent selected."
	}
	return a.Number
}

// mutation reports a committed create, update or delete.
type mutation struct {
	Action jd.Action     `json:"action"`
	Entity jd.EntityType `json:"entity"`
	ID     int64         `json:"id"`
	Number string        `json:"number,omitempty"`
}

func (m mutation) Text() string {
	verb := map[jd.Action]string{
		jd.ActionCreate: "Created",
		jd.ActionUpdate: "Updated",
		jd.ActionDelete: "Deleted",
	}[m.Action]
	entity := strings.ReplaceAll(string(m.Entity), "_", " ")
	if m.Number == "" {
		return fmt.Sprintf("%s %s %d", verb, entity, m.ID)
	}
	return fmt.Sprintf("%s %s %s (id %d)", verb, entity, m.Number, m.ID)
}

// notice is a one-line confirmation.
type notice struct {
	Message string `json:"message"`
}

func (n notice) Text() string { return n.Message }

type consoleResult console.Result

func (r consoleResult) Text() string {
	sets := r.Sets
	if len(sets) == 0 && len(r.Columns) > 0 {
		sets = []console.ResultSet{{Columns: r.Columns, Rows: r.Rows}}
	}
	parts := make([]string, 0, len(sets)+1)
	for _, set := range sets {
		parts = append(parts, renderSet(set))
	}
	if len(sets) == 0 || r.RowsAffected > 0 {
		parts = append(parts, fmt.Sprintf("OK, %d row(s) affected.", r.RowsAffected))
	}
	return strings.Join(parts, "\n\n")
}

func renderSet(set console.ResultSet) string {
	rows := make([][]string, 0, len(set.Rows))
	for _, row := range set.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cell(v)
		}
		rows = append(rows, cells)
	}
	return fmt.Sprintf("%s\n(%d row(s))", renderTable(set.Columns, rows), len(set.Rows))
}

type tableNames []string

func (t tableNames) Text() string { return strings.Join(t, "\n") }

func keyValues(pairs [][2]string) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	return renderTable([]string{"FIELD", "VALUE"}, rows)
}

func areaRange(a jd.Area) string {
	return fmt.Sprintf("%02d-%02d", a.RangeStart, a.RangeEnd)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
