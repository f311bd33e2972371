package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/sharepoint/pkg/sharepoint"
)

// FakeSharePoint is an in-memory SharePoint REST server covering the list,
// item, attachment, and user surface the client exercises. State is held in
// maps so workflows can assert on exact contents and request counts.
type FakeSharePoint struct {
	Server *httptest.Server

	mu         sync.Mutex
	lists      map[string]*fakeList
	users      map[int]sharepoint.SiteUser
	pathCounts map[string]int
	requests   int
}

type fakeList struct {
	meta        sharepoint.List
	fields      []sharepoint.FieldDef
	order       []int
	items       map[int]map[string]any
	attachments map[int]map[string][]byte
	nextID      int
}

var (
	listRe          = regexp.MustCompile(`^/_api/web/lists/getbytitle\('([^']*)'\)$`)
	fieldsRe        = regexp.MustCompile(`^/_api/web/lists/getbytitle\('([^']*)'\)/fields$`)
	itemsRe         = regexp.MustCompile(`^/_api/web/lists/getbytitle\('([^']*)'\)/items$`)
	itemRe          = regexp.MustCompile(`^/_api/web/lists/getbytitle\('([^']*)'\)/items\((\d+)\)$`)
	attachmentsRe   = regexp.MustCompile(`^/_api/web/lists/getbytitle\('([^']*)'\)/items\((\d+)\)/AttachmentFiles$`)
	attachmentAddRe = regexp.MustCompile(`^/_api/web/lists/getbytitle\('([^']*)'\)/items\((\d+)\)/AttachmentFiles/add\(FileName='([^']*)'\)$`)
	attachmentValRe = regexp.MustCompile(`^/_api/web/lists/getbytitle\('([^']*)'\)/items\((\d+)\)/AttachmentFiles\('([^']*)'\)/\$value$`)
	attachmentRe    = regexp.MustCompile(`^/_api/web/lists/getbytitle\('([^']*)'\)/items\((\d+)\)/AttachmentFiles\('([^']*)'\)$`)
	userRe          = regexp.MustCompile(`^/_api/web/siteusers/getbyid\((\d+)\)$`)
)

// NewFakeSharePoint starts a fake server. It is shut down with the test.
func NewFakeSharePoint(t *testing.T) *FakeSharePoint {
	t.Helper()

	fake := &FakeSharePoint{
		lists:      make(map[string]*fakeList),
		users:      make(map[int]sharepoint.SiteUser),
		pathCounts: make(map[string]int),
	}

	fake.Server = httptest.NewServer(http.HandlerFunc(fake.handle))
	t.Cleanup(fake.Server.Close)

	return fake
}

// SeedList creates a list with the given custom fields, in addition to the
// default Title column.
func (f *FakeSharePoint) SeedList(title string, fields ...sharepoint.FieldDef) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createListLocked(title, "")
	f.lists[title].fields = append(f.lists[title].fields, fields...)
}

// SeedUser registers a site user.
func (f *FakeSharePoint) SeedUser(user sharepoint.SiteUser) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[user.ID] = user
}

// Requests returns the total number of requests served.
func (f *FakeSharePoint) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.requests
}

// RequestsFor returns the number of requests served for an exact path.
func (f *FakeSharePoint) RequestsFor(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pathCounts[path]
}

func (f *FakeSharePoint) createListLocked(title, description string) *fakeList {
	list := &fakeList{
		meta: sharepoint.List{
			ID:                "list-" + title,
			Title:             title,
			Description:       description,
			BaseTemplate:      sharepoint.ListTemplateGeneric,
			AllowContentTypes: true,
			Created:           time.Now().UTC(),
		},
		fields: []sharepoint.FieldDef{
			{InternalName: "Title", Title: "Title", Type: sharepoint.FieldTypeText},
		},
		items:       make(map[int]map[string]any),
		attachments: make(map[int]map[string][]byte),
		nextID:      1,
	}

	f.lists[title] = list

	return list
}

func (f *FakeSharePoint) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests++
	f.pathCounts[r.URL.Path]++

	w.Header().Set("Content-Type", "application/json;odata=nometadata")
	w.Header().Set("SPRequestGuid", "fake-guid")

	path := r.URL.Path

	switch {
	case path == "/_api/web" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, sharepoint.Web{Title: "Fake Site", ServerRelativeURL: "/sites/fake"})

	case path == "/_api/web/lists" && r.Method == http.MethodGet:
		f.handleListCollection(w)

	case path == "/_api/web/lists" && r.Method == http.MethodPost:
		f.handleListCreate(w, r)

	case path == "/_api/web/siteusers" && r.Method == http.MethodGet:
		f.handleUserCollection(w)

	case userRe.MatchString(path) && r.Method == http.MethodGet:
		f.handleUserGet(w, userRe.FindStringSubmatch(path))

	case attachmentAddRe.MatchString(path) && r.Method == http.MethodPost:
		f.handleAttachmentAdd(w, r, attachmentAddRe.FindStringSubmatch(path))

	case attachmentValRe.MatchString(path) && r.Method == http.MethodGet:
		f.handleAttachmentDownload(w, attachmentValRe.FindStringSubmatch(path))

	case attachmentRe.MatchString(path) && r.Method == http.MethodDelete:
		f.handleAttachmentDelete(w, attachmentRe.FindStringSubmatch(path))

	case attachmentsRe.MatchString(path) && r.Method == http.MethodGet:
		f.handleAttachmentList(w, attachmentsRe.FindStringSubmatch(path))

	case itemRe.MatchString(path):
		f.handleItem(w, r, itemRe.FindStringSubmatch(path))

	case itemsRe.MatchString(path):
		f.handleItems(w, r, itemsRe.FindStringSubmatch(path))

	case fieldsRe.MatchString(path):
		f.handleFields(w, r, fieldsRe.FindStringSubmatch(path))

	case listRe.MatchString(path):
		f.handleList(w, r, listRe.FindStringSubmatch(path))

	default:
		writeNotFound(w, "Endpoint not found: "+r.Method+" "+path)
	}
}

func (f *FakeSharePoint) handleListCollection(w http.ResponseWriter) {
	titles := make([]string, 0, len(f.lists))
	for title := range f.lists {
		titles = append(titles, title)
	}

	sort.Strings(titles)

	lists := make([]sharepoint.List, 0, len(titles))
	for _, title := range titles {
		lists = append(lists, f.lists[title].meta)
	}

	writeJSON(w, http.StatusOK, sharepoint.ListResponse[sharepoint.List]{Value: lists})
}

func (f *FakeSharePoint) handleListCreate(w http.ResponseWriter, r *http.Request) {
	var request sharepoint.ListCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Title == "" {
		writeODataError(w, http.StatusBadRequest, "-1, System.ArgumentException", "Invalid list payload.")

		return
	}

	if _, exists := f.lists[request.Title]; exists {
		writeODataError(w, http.StatusBadRequest, "-1, Microsoft.SharePoint.SPDuplicateValuesFoundException",
			"A list with the title '"+request.Title+"' already exists.")

		return
	}

	list := f.createListLocked(request.Title, request.Description)
	writeJSON(w, http.StatusCreated, list.meta)
}

func (f *FakeSharePoint) handleList(w http.ResponseWriter, r *http.Request, match []string) {
	list, ok := f.lists[match[1]]
	if !ok {
		writeNotFound(w, "List '"+match[1]+"' does not exist at site with URL.")

		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, list.meta)
	case http.MethodDelete:
		delete(f.lists, match[1])
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeSharePoint) handleFields(w http.ResponseWriter, r *http.Request, match []string) {
	list, ok := f.lists[match[1]]
	if !ok {
		writeNotFound(w, "List '"+match[1]+"' does not exist at site with URL.")

		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, sharepoint.ListResponse[sharepoint.FieldDef]{Value: list.fields})

	case http.MethodPost:
		var payload struct {
			Title         string `json:"Title"`
			FieldTypeKind int    `json:"FieldTypeKind"`
			Required      bool   `json:"Required"`
		}

		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Title == "" {
			writeODataError(w, http.StatusBadRequest, "-1, System.ArgumentException", "Invalid field payload.")

			return
		}

		definition := sharepoint.FieldDef{
			InternalName: payload.Title,
			Title:        payload.Title,
			Type:         fieldTypeFromKind(payload.FieldTypeKind),
			Required:     payload.Required,
		}
		list.fields = append(list.fields, definition)

		writeJSON(w, http.StatusCreated, definition)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeSharePoint) handleItems(w http.ResponseWriter, r *http.Request, match []string) {
	list, ok := f.lists[match[1]]
	if !ok {
		writeNotFound(w, "List '"+match[1]+"' does not exist at site with URL.")

		return
	}

	switch r.Method {
	case http.MethodGet:
		f.handleItemsPage(w, r, list)

	case http.MethodPost:
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeODataError(w, http.StatusBadRequest, "-1, System.ArgumentException", "Invalid item payload.")

			return
		}

		item := make(map[string]any, len(fields)+3)
		for key, value := range fields {
			item[key] = value
		}

		item["Id"] = list.nextID
		item["Created"] = time.Now().UTC().Format(time.RFC3339)
		item["Modified"] = item["Created"]

		list.items[list.nextID] = item
		list.order = append(list.order, list.nextID)
		list.nextID++

		writeJSON(w, http.StatusCreated, item)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleItemsPage serves one page of items in insertion order, honoring $top
// and the Paged=TRUE&p_ID=<n> continuation token.
func (f *FakeSharePoint) handleItemsPage(w http.ResponseWriter, r *http.Request, list *fakeList) {
	top := len(list.order)
	if raw := r.URL.Query().Get("$top"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			top = parsed
		}
	}

	afterID := 0

	if token := r.URL.Query().Get("$skiptoken"); token != "" {
		if values, err := url.ParseQuery(token); err == nil {
			afterID, _ = strconv.Atoi(values.Get("p_ID"))
		}
	}

	var page []map[string]any

	lastID := 0

	for _, id := range list.order {
		if id <= afterID {
			continue
		}

		if len(page) >= top {
			break
		}

		page = append(page, list.items[id])
		lastID = id
	}

	response := map[string]any{"value": page}

	if len(page) == top && remainingAfter(list, lastID) {
		token := url.QueryEscape("Paged=TRUE&p_ID=" + strconv.Itoa(lastID))
		response["odata.nextLink"] = f.Server.URL + r.URL.Path + "?%24skiptoken=" + token
	}

	writeJSON(w, http.StatusOK, response)
}

func remainingAfter(list *fakeList, lastID int) bool {
	for _, id := range list.order {
		if id > lastID {
			return true
		}
	}

	return false
}

func (f *FakeSharePoint) handleItem(w http.ResponseWriter, r *http.Request, match []string) {
	list, ok := f.lists[match[1]]
	if !ok {
		writeNotFound(w, "List '"+match[1]+"' does not exist at site with URL.")

		return
	}

	itemID, _ := strconv.Atoi(match[2])

	item, ok := list.items[itemID]
	if !ok {
		writeNotFound(w, "Item does not exist. It may have been deleted by another user.")

		return
	}

	switch {
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, item)

	case r.Method == http.MethodPost && r.Header.Get("X-HTTP-Method") == "MERGE":
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeODataError(w, http.StatusBadRequest, "-1, System.ArgumentException", "Invalid item payload.")

			return
		}

		for key, value := range fields {
			item[key] = value
		}

		item["Modified"] = time.Now().UTC().Format(time.RFC3339)

		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodDelete:
		delete(list.items, itemID)
		delete(list.attachments, itemID)

		for index, id := range list.order {
			if id == itemID {
				list.order = append(list.order[:index], list.order[index+1:]...)

				break
			}
		}

		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeSharePoint) handleAttachmentList(w http.ResponseWriter, match []string) {
	list, itemID, ok := f.listItem(w, match)
	if !ok {
		return
	}

	names := make([]string, 0, len(list.attachments[itemID]))
	for name := range list.attachments[itemID] {
		names = append(names, name)
	}

	sort.Strings(names)

	attachments := make([]sharepoint.Attachment, 0, len(names))
	for _, name := range names {
		attachments = append(attachments, sharepoint.Attachment{
			FileName:          name,
			ServerRelativeURL: "/sites/fake/Lists/" + list.meta.Title + "/Attachments/" + name,
		})
	}

	writeJSON(w, http.StatusOK, sharepoint.ListResponse[sharepoint.Attachment]{Value: attachments})
}

func (f *FakeSharePoint) handleAttachmentAdd(w http.ResponseWriter, r *http.Request, match []string) {
	list, itemID, ok := f.listItem(w, match)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeODataError(w, http.StatusBadRequest, "-1, System.ArgumentException", "Unreadable attachment body.")

		return
	}

	if list.attachments[itemID] == nil {
		list.attachments[itemID] = make(map[string][]byte)
	}

	list.attachments[itemID][match[3]] = body

	writeJSON(w, http.StatusCreated, sharepoint.Attachment{FileName: match[3]})
}

func (f *FakeSharePoint) handleAttachmentDownload(w http.ResponseWriter, match []string) {
	list, itemID, ok := f.listItem(w, match)
	if !ok {
		return
	}

	content, ok := list.attachments[itemID][match[3]]
	if !ok {
		writeNotFound(w, "Attachment '"+match[3]+"' does not exist.")

		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (f *FakeSharePoint) handleAttachmentDelete(w http.ResponseWriter, match []string) {
	list, itemID, ok := f.listItem(w, match)
	if !ok {
		return
	}

	if _, exists := list.attachments[itemID][match[3]]; !exists {
		writeNotFound(w, "Attachment '"+match[3]+"' does not exist.")

		return
	}

	delete(list.attachments[itemID], match[3])
	w.WriteHeader(http.StatusOK)
}

func (f *FakeSharePoint) handleUserCollection(w http.ResponseWriter) {
	ids := make([]int, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	users := make([]sharepoint.SiteUser, 0, len(ids))
	for _, id := range ids {
		users = append(users, f.users[id])
	}

	writeJSON(w, http.StatusOK, sharepoint.ListResponse[sharepoint.SiteUser]{Value: users})
}

func (f *FakeSharePoint) handleUserGet(w http.ResponseWriter, match []string) {
	userID, _ := strconv.Atoi(match[1])

	user, ok := f.users[userID]
	if !ok {
		writeNotFound(w, "User cannot be found.")

		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (f *FakeSharePoint) listItem(w http.ResponseWriter, match []string) (*fakeList, int, bool) {
	list, ok := f.lists[match[1]]
	if !ok {
		writeNotFound(w, "List '"+match[1]+"' does not exist at site with URL.")

		return nil, 0, false
	}

	itemID, _ := strconv.Atoi(match[2])
	if _, ok := list.items[itemID]; !ok {
		writeNotFound(w, "Item does not exist. It may have been deleted by another user.")

		return nil, 0, false
	}

	return list, itemID, true
}

func fieldTypeFromKind(kind int) sharepoint.FieldType {
	switch kind {
	case 1:
		return sharepoint.FieldTypeInteger
	case 3:
		return sharepoint.FieldTypeNote
	case 4:
		return sharepoint.FieldTypeDateTime
	case 6:
		return sharepoint.FieldTypeChoice
	case 7:
		return sharepoint.FieldTypeLookup
	case 8:
		return sharepoint.FieldTypeBoolean
	case 9:
		return sharepoint.FieldTypeNumber
	case 10:
		return sharepoint.FieldTypeCurrency
	case 11:
		return sharepoint.FieldTypeURL
	case 20:
		return sharepoint.FieldTypeUser
	default:
		return sharepoint.FieldTypeText
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeODataError(w, http.StatusNotFound, "-1, System.ArgumentException", message)
}

func writeODataError(w http.ResponseWriter, statusCode int, code, message string) {
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"odata.error": map[string]any{
			"code": code,
			"message": map[string]any{
				"lang":  "en-US",
				"value": message,
			},
		},
	})
}
