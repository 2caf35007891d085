// Command simulate_workspace walks one user session through the workspace
// flow against an in-process fake document service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"docworkspace/internal/client"
	"docworkspace/internal/feature/chunks"
	"docworkspace/internal/feature/filterpanel"
	"docworkspace/internal/feature/simtables"
	"docworkspace/internal/feature/workspace"
	"docworkspace/internal/pkg/logger"
	"docworkspace/pkg/docapi"
	"docworkspace/pkg/events"
	"docworkspace/pkg/session"

	"github.com/fatih/color"
)

var similarCalls int32

func fakeDocumentService() *httptest.Server {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	caption := "Revenue by segment"
	title := "Results of operations"

	mux.HandleFunc("/documents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []docapi.Document{{ID: "acme-10k-2023", Name: "Acme 10-K 2023", Company: "Acme", DocumentType: "10-K", Year: "2023", Pages: 80}})
	})
	mux.HandleFunc("/documents/acme-10k-2023/chunks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, docapi.ChunkSet{
			Text: []docapi.Chunk{
				{Data: "Revenue grew 12% year over year.", Title: &title, Page: 12, Y1: 80},
				{Data: "Acme designs industrial widgets.", Page: 3, Y1: 40},
			},
			Tables: []docapi.Chunk{
				{Data: "<table><tr><th>Segment</th><th>2023</th></tr><tr><td>Widgets</td><td>4.2</td></tr></table>", Caption: &caption, Page: 12, Y1: 12.5},
			},
		})
	})
	mux.HandleFunc("/similar_tables", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&similarCalls, 1)
		time.Sleep(50 * time.Millisecond)
		writeJSON(w, map[string]interface{}{"matches": []map[string]interface{}{{"document_id": "globex-10k-2023", "score": 0.87}}})
	})
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, docapi.Summary{Summary: "Acme grew revenue on widget demand."})
	})
	mux.HandleFunc("/projects", func(w http.ResponseWriter, r *http.Request) {
		var req docapi.ProjectRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, docapi.Project{ID: "prj-1", Name: req.Name})
	})
	return httptest.NewServer(mux)
}

func step(title string) {
	color.Cyan("\n== %s ==", title)
}

func check(err error) {
	if err != nil {
		color.Red("   failed: %v", err)
		os.Exit(1)
	}
}

func main() {
	srv := fakeDocumentService()
	defer srv.Close()

	recorder := &events.Recorder{}
	sess := client.NewSession("demo-user", client.Deps{
		API:            docapi.NewClient(srv.URL, 5*time.Second),
		Sessions:       session.StaticProvider{Session: &session.Session{AccessToken: "demo-token"}},
		Publisher:      recorder,
		Logger:         logger.NewNopLogger(),
		PanelAnimation: 100 * time.Millisecond,
	})
	defer sess.Close()
	ctx := context.Background()

	step("Documents")
	docs, err := sess.Documents.List(ctx)
	check(err)
	for _, d := range docs {
		fmt.Printf("   %s  %s (%d pages)\n", d.ID, d.Name, d.Pages)
	}
	check(sess.Documents.Select(docs[0].ID))

	step("Chunks")
	set, err := sess.Chunks.Fetch(ctx, docs[0].ID)
	check(err)
	color.Green("   %d text, %d tables, %d graphs", len(set.Text), len(set.Tables), len(set.Graphs))
	for _, c := range chunks.SelectChunksForPage(12)(sess.State()) {
		fmt.Printf("   p12 #%d %-5s %.40q\n", c.Index, c.Type, c.Data)
	}

	step("Workspace add / remove / restore")
	_, err = sess.Workspace.Add(ctx, set.Tables[0])
	check(err)
	_, err = sess.Workspace.Add(ctx, set.Text[1])
	check(err)
	if _, err := sess.Workspace.Add(ctx, set.Tables[0]); err != nil {
		color.Yellow("   duplicate rejected: %v", err)
	}
	check(sess.Workspace.Remove(ctx, 0))
	st := sess.State()
	fmt.Printf("   after remove: visible=%d total=%d\n", workspace.SelectVisibleCount(st), workspace.SelectTotalCount(st))
	check(sess.Workspace.Restore(ctx, 0))
	st = sess.State()
	fmt.Printf("   after restore: visible=%d total=%d\n", workspace.SelectVisibleCount(st), workspace.SelectTotalCount(st))

	step("Similar tables (two concurrent lookups)")
	key := simtables.NewKey("T1", "Acme", "10-K", "2023")
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = sess.SimilarTables.Lookup(ctx, key)
		}()
	}
	wg.Wait()
	leaf, _, err := sess.SimilarTables.Lookup(ctx, key)
	check(err)
	color.Green("   fetches=%d data=%s", atomic.LoadInt32(&similarCalls), leaf.Data)

	step("Filter panel")
	sess.FilterPanel.Toggle("filters")
	fmt.Printf("   requested open: %s\n", sess.FilterPanel.State("filters"))
	sess.FilterPanel.Toggle("filters")
	sess.FilterPanel.Toggle("filters")
	time.Sleep(300 * time.Millisecond)
	fmt.Printf("   settled: %s (visible=%v)\n", sess.FilterPanel.State("filters"), filterpanel.SelectPanelVisible("filters")(sess.State()))

	step("Summary")
	entry, ok, err := sess.Summary.Summarize(ctx, docs[0].ID)
	check(err)
	fmt.Printf("   signed in=%v: %s\n", ok, entry.Text)

	step("Project")
	sess.Project.Open([]string{docs[0].ID})
	sess.Project.SetName("Widget margins")
	for _, el := range workspace.SelectElements(sess.State()) {
		sess.Project.ToggleElement(el.ID)
	}
	project, err := sess.Project.Submit(ctx)
	check(err)
	color.Green("   created %s %q", project.ID, project.Name)

	step("Editor export")
	fmt.Println(sess.Workspace.Markdown())

	step("Activity events")
	for _, t := range recorder.Types() {
		fmt.Printf("   %s\n", t)
	}
}
