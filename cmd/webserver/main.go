package main

import (
	"encoding/gob"
	"flag"
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"testgen"

	"github.com/gorilla/sessions"
)

const sessionName = "testgen-session"

type Server struct {
	pool      []testgen.Item
	cfg       *testgen.Config
	maker     *testgen.TestMaker
	store     *sessions.CookieStore
	templates map[string]*template.Template

	mu    sync.Mutex
	tests map[string]*testgen.Test
}

// TakeSession tracks one browser's progress through an assembled test
type TakeSession struct {
	TestID    string `json:"test_id"`
	CurrentQ  int    `json:"current_q"`
	Answers   []int  `json:"answers"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
}

func init() {
	gob.Register(TakeSession{})
}

func main() {
	var (
		bankFile   = flag.String("bank", "", "Item bank file, YAML or SQLite (required)")
		configFile = flag.String("config", "", "Assembly config file, YAML (required)")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	testgen.SetVerbose(*verbose)

	if *bankFile == "" || *configFile == "" {
		log.Fatal("Both -bank and -config flags are required.")
	}

	pool, err := testgen.LoadBank(*bankFile)
	if err != nil {
		log.Fatalf("Failed to load bank: %v", err)
	}
	cfg, err := testgen.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Loaded %d items and %d criteria", len(pool), len(cfg.Criteria))

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "testgen-dev-secret"
	}
	store := sessions.NewCookieStore([]byte(secret))

	// Load templates with custom functions
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"letter": func(i int) string {
			return string(rune('A' + i))
		},
		"printf": fmt.Sprintf,
	}

	templates := make(map[string]*template.Template)
	templateFiles := []struct {
		name string
		file string
	}{
		{"home", "templates/home.html"},
		{"question", "templates/question.html"},
		{"results", "templates/results.html"},
	}
	for _, tmpl := range templateFiles {
		templates[tmpl.name] = template.Must(template.New(tmpl.name).Funcs(funcMap).ParseFiles("templates/base.html", tmpl.file))
	}

	server := &Server{
		pool:      pool,
		cfg:       cfg,
		maker:     testgen.NewTestMaker(nil),
		store:     store,
		templates: templates,
		tests:     make(map[string]*testgen.Test),
	}

	http.HandleFunc("/", server.handleHome)
	http.HandleFunc("/test/new", server.handleNewTest)
	http.HandleFunc("/test/", server.handleTest)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

type tagCount struct {
	Tag   string
	Count int
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	counts := make(map[string]int)
	for _, item := range s.pool {
		for _, tag := range item.Tags.Sorted() {
			counts[tag]++
		}
	}
	census := make([]tagCount, 0, len(counts))
	for tag, count := range counts {
		census = append(census, tagCount{Tag: tag, Count: count})
	}
	sort.Slice(census, func(i, j int) bool { return census[i].Tag < census[j].Tag })

	s.mu.Lock()
	tests := make([]*testgen.Test, 0, len(s.tests))
	for _, test := range s.tests {
		tests = append(tests, test)
	}
	s.mu.Unlock()
	sort.Slice(tests, func(i, j int) bool { return tests[i].CreatedAt.After(tests[j].CreatedAt) })

	err := s.templates["home"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Title":    s.cfg.Title,
		"NumItems": len(s.pool),
		"Census":   census,
		"Criteria": s.cfg.Criteria,
		"Tests":    tests,
	})
	if err != nil {
		log.Printf("Template error in home: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleNewTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	maker := s.maker
	if seedStr := r.FormValue("seed"); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid seed", http.StatusBadRequest)
			return
		}
		maker = testgen.NewTestMaker(testgen.NewSampler(rand.New(rand.NewSource(seed))))
	}

	test, err := maker.Assemble(s.pool, s.cfg, "", 0, false)
	if err != nil {
		log.Printf("Failed to assemble test: %v", err)
		http.Error(w, fmt.Sprintf("Failed to assemble test: %v", err), http.StatusConflict)
		return
	}

	s.mu.Lock()
	s.tests[test.ID] = test
	s.mu.Unlock()
	log.Printf("Assembled test %s with %d items", test.ID, test.TotalItems)

	http.Redirect(w, r, "/test/"+test.ID, http.StatusSeeOther)
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/test/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	testID := parts[0]

	s.mu.Lock()
	test, ok := s.tests[testID]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if len(parts) > 1 && parts[1] == "answer" {
		s.handleAnswer(w, r, test)
		return
	}
	if len(parts) > 1 && parts[1] == "results" {
		s.showResults(w, r, test)
		return
	}
	s.showQuestion(w, r, test)
}

func (s *Server) takeSession(r *http.Request, test *testgen.Test) (*sessions.Session, TakeSession) {
	session, _ := s.store.Get(r, sessionName)
	take, ok := session.Values[test.ID].(TakeSession)
	if !ok {
		take = TakeSession{
			TestID:  test.ID,
			Answers: make([]int, 0, len(test.Items)),
		}
	}
	return session, take
}

func (s *Server) showQuestion(w http.ResponseWriter, r *http.Request, test *testgen.Test) {
	session, take := s.takeSession(r, test)
	if take.Completed || take.CurrentQ >= len(test.Items) {
		http.Redirect(w, r, "/test/"+test.ID+"/results", http.StatusSeeOther)
		return
	}

	session.Values[test.ID] = take
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
	}

	item := test.Items[take.CurrentQ]
	err := s.templates["question"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Test":        test,
		"Item":        item,
		"QuestionNum": take.CurrentQ + 1,
		"Total":       len(test.Items),
		"Score":       take.Score,
	})
	if err != nil {
		log.Printf("Template error in question: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request, test *testgen.Test) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	session, take := s.takeSession(r, test)
	if take.Completed || take.CurrentQ >= len(test.Items) {
		http.Redirect(w, r, "/test/"+test.ID+"/results", http.StatusSeeOther)
		return
	}

	answer, err := strconv.Atoi(r.FormValue("answer"))
	item := test.Items[take.CurrentQ]
	if err != nil || answer < 0 || answer >= len(item.Responses) {
		http.Error(w, "Invalid answer", http.StatusBadRequest)
		return
	}

	take.Answers = append(take.Answers, answer)
	if answer == item.Correct {
		take.Score++
	}
	take.CurrentQ++
	if take.CurrentQ >= len(test.Items) {
		take.Completed = true
	}

	session.Values[test.ID] = take
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
	}

	if take.Completed {
		http.Redirect(w, r, "/test/"+test.ID+"/results", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/test/"+test.ID, http.StatusSeeOther)
}

type resultRow struct {
	Item    testgen.Item
	Answer  int
	Correct bool
}

func (s *Server) showResults(w http.ResponseWriter, r *http.Request, test *testgen.Test) {
	_, take := s.takeSession(r, test)

	rows := make([]resultRow, 0, len(take.Answers))
	for i, answer := range take.Answers {
		if i >= len(test.Items) {
			break
		}
		rows = append(rows, resultRow{
			Item:    test.Items[i],
			Answer:  answer,
			Correct: answer == test.Items[i].Correct,
		})
	}

	percentage := 0.0
	if len(test.Items) > 0 {
		percentage = float64(take.Score) / float64(len(test.Items)) * 100
	}

	err := s.templates["results"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Test":       test,
		"Rows":       rows,
		"Score":      take.Score,
		"Total":      len(test.Items),
		"Percentage": percentage,
		"Completed":  take.Completed,
	})
	if err != nil {
		log.Printf("Template error in results: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
