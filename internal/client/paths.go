package client

import (
	"strconv"
	"strings"
)

// quoteArg escapes a value for use inside an OData ('...') path argument.
// Single quotes are doubled per the OData literal rules.
func quoteArg(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// listPath returns the REST path of a list addressed by display title.
func listPath(listName string) string {
	return "/_api/web/lists/getbytitle('" + quoteArg(listName) + "')"
}

// itemPath returns the REST path of a single list item.
func itemPath(listName string, itemID int) string {
	return listPath(listName) + "/items(" + strconv.Itoa(itemID) + ")"
}

// folderPath returns the REST path of a folder addressed by server-relative
// URL.
func folderPath(serverRelativePath string) string {
	return "/_api/web/GetFolderByServerRelativeUrl('" + quoteArg(serverRelativePath) + "')"
}

// joinFolder joins a parent folder path and a child name with exactly one
// separator.
func joinFolder(parentPath, name string) string {
	return strings.TrimSuffix(parentPath, "/") + "/" + strings.TrimPrefix(name, "/")
}
