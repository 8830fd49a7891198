package jd

// EntityType names a table-backed entity kind. Values match the
// activity_log.entity_type column.
type EntityType string

const (
	EntityArea            EntityType = "area"
	EntityCategory        EntityType = "category"
	EntityFolder          EntityType = "folder"
	EntityItem            EntityType = "item"
	EntityStorageLocation EntityType = "storage_location"
)

// Action is an activity log action.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// DefaultAreaColor is used when an area is created without a color.
const DefaultAreaColor = "#64748b"

// Area is a Level 1 grouping owning the category numbers
// RangeStart..RangeEnd inclusive.
type Area struct {
	ID          int64  `json:"id"`
	RangeStart  int    `json:"range_start"`
	RangeEnd    int    `json:"range_end"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	CreatedAt   string `json:"created_at"`
}

// Category is a Level 2 grouping with a globally unique number.
type Category struct {
	ID          int64  `json:"id"`
	Number      int    `json:"number"`
	AreaID      int64  `json:"area_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// CategoryView is a Category joined with its owning Area's display fields.
type CategoryView struct {
	Category
	AreaName  string `json:"area_name"`
	AreaColor string `json:"area_color"`
}

// Folder is a Level 3 container numbered CC.SS.
type Folder struct {
	ID           int64       `json:"id"`
	FolderNumber string      `json:"folder_number"`
	CategoryID   int64       `json:"category_id"`
	Sequence     int         `json:"sequence"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Sensitivity  Sensitivity `json:"sensitivity"`
	Location     string      `json:"location"`
	StoragePath  string      `json:"storage_path"`
	Keywords     string      `json:"keywords"`
	Notes        string      `json:"notes"`
	CreatedAt    string      `json:"created_at"`
	UpdatedAt    string      `json:"updated_at"`
}

// FolderView is a Folder joined with its Category and Area display fields.
type FolderView struct {
	Folder
	CategoryNumber int    `json:"category_number"`
	CategoryName   string `json:"category_name"`
	AreaName       string `json:"area_name"`
	AreaColor      string `json:"area_color"`
}

// Item is a Level 4 tracked object numbered CC.SS.SS.
type Item struct {
	ID          int64       `json:"id"`
	ItemNumber  string      `json:"item_number"`
	FolderID    int64       `json:"folder_id"`
	Sequence    int         `json:"sequence"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	FileType    string      `json:"file_type"`
	Sensitivity Sensitivity `json:"sensitivity"`
	Location    string      `json:"location"`
	StoragePath string      `json:"storage_path"`
	FileSize    *int64      `json:"file_size"`
	Keywords    string      `json:"keywords"`
	Notes       string      `json:"notes"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
}

// ItemView is an Item joined with its full ancestor chain. Effective
// sensitivity is resolved when the view is built.
type ItemView struct {
	Item
	FolderNumber         string      `json:"folder_number"`
	FolderName           string      `json:"folder_name"`
	FolderSensitivity    Sensitivity `json:"folder_sensitivity"`
	CategoryNumber       int         `json:"category_number"`
	CategoryName         string      `json:"category_name"`
	AreaName             string      `json:"area_name"`
	AreaColor            string      `json:"area_color"`
	EffectiveSensitivity Sensitivity `json:"effective_sensitivity"`
}

// Resolve fills EffectiveSensitivity from the item's own tier and the
// folder tier carried on the view.
func (v *ItemView) Resolve() {
	v.EffectiveSensitivity = Effective(v.Sensitivity, v.FolderSensitivity)
}

// StorageLocation is an informational catalog entry. Folders and items
// refer to it by name through their free-text location field.
type StorageLocation struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	IsEncrypted bool   `json:"is_encrypted"`
	Notes       string `json:"notes"`
}

// ActivityEntry is an append-only audit record.
type ActivityEntry struct {
	ID           int64      `json:"id"`
	Action       Action     `json:"action"`
	EntityType   EntityType `json:"entity_type"`
	EntityNumber string     `json:"entity_number"`
	Details      string     `json:"details"`
	Timestamp    string     `json:"timestamp"`
}

// Allocation is the allocator's answer: the next composite identifier
// under a parent and its raw sequence.
type Allocation struct {
	Number   string `json:"number"`
	Sequence int    `json:"sequence"`
}

// SearchResult holds the two independent result sets of a search.
type SearchResult struct {
	Folders []FolderView `json:"folders"`
	Items   []ItemView   `json:"items"`
}

// Stats are aggregate counts over the hierarchy.
type Stats struct {
	TotalAreas       int `json:"total_areas"`
	TotalCategories  int `json:"total_categories"`
	TotalFolders     int `json:"total_folders"`
	TotalItems       int `json:"total_items"`
	StandardFolders  int `json:"standard_folders"`
	SensitiveFolders int `json:"sensitive_folders"`
	WorkFolders      int `json:"work_folders"`
	InheritItems     int `json:"inherit_items"`
	StandardItems    int `json:"standard_items"`
	SensitiveItems   int `json:"sensitive_items"`
	WorkItems        int `json:"work_items"`
}

// TimeLayout matches SQLite's CURRENT_TIMESTAMP text form, UTC.
const TimeLayout = "2006-01-02 15:04:05"
