package testutil

// Chapter ten of a small to-do list book: the start state is branch
// chapter_09, two labelled listings follow, and chapter_10 marks the end.
const (
	ChapterTestsV1 = "from lists.views import home_page\n\n\ndef test_home_page():\n    assert home_page() == \"home\"\n"
	ChapterViewsV1 = "def home_page():\n    return \"home\"\n"
	// ChapterTestScript passes once lists/views.py exists.
	ChapterTestScript  = "if [ -f lists/views.py ]; then\n  echo 'Ran 1 test in 0.001s'\n  echo OK\nelse\n  echo 'Ran 1 test in 0.002s'\n  echo FAILED\n  exit 1\nfi\n"
	ChapterTestCommand = "sh run_tests.sh"
)

// ChapterTenSteps returns the commits of the sample chapter.
func ChapterTenSteps() []Step {
	return []Step{
		{
			Message: "chapter 9 end",
			Files: map[string]string{
				"README.md":      "# To-Do lists\n",
				".gitignore":     "*.pyc\n__pycache__/\n",
				"run_tests.sh":   ChapterTestScript,
				"lists/tests.py": "",
			},
			Branch: "chapter_09",
		},
		{
			Label:   "ch10l001",
			Message: "first test",
			Files:   map[string]string{"lists/tests.py": ChapterTestsV1},
		},
		{
			Label:   "ch10l002",
			Message: "home page view",
			Files:   map[string]string{"lists/views.py": ChapterViewsV1},
			Branch:  "chapter_10",
		},
	}
}
