package inventory

// FolderNode is a folder with its nested children, used for tree responses.
type FolderNode struct {
	Folder
	Children []*FolderNode `json:"children"`
}

// FolderTree is the user's whole forest plus the number of unfiled items.
type FolderTree struct {
	Folders      []*FolderNode `json:"folders"`
	UnfiledItems int           `json:"unfiled_items"`
	TotalFolders int           `json:"total_folders"`
	MaxDepth     int           `json:"max_depth"`
}
