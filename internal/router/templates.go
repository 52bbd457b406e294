package router

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"

	"yatube/internal/services"
	"yatube/internal/utils"
)

// views lists every page template; handlers render them by these names.
var views = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"posts/follow.html",
	"users/signup.html",
	"users/login.html",
	"users/logged_out.html",
	"about/author.html",
	"about/tech.html",
	"core/404.html",
	"core/500.html",
	"core/403csrf.html",
}

// fragments are rendered without the layout and cached apart from the page.
var fragments = []string{
	"fragments/home_feed.html",
}

func funcMap(images services.ImageStore) template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"renderText": utils.RenderText,
		"mediaURL":   images.URL,
		"errorsFor": func(errs map[string][]string, field string) []string {
			return errs[field]
		},
		"formatDate": func(t time.Time) string {
			return t.Format("02 Jan 2006")
		},
		"year": func() int {
			return time.Now().Year()
		},
	}
}

func loadTemplates(templatesDir string, images services.ImageStore) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcs := funcMap(images)
	for _, view := range views {
		r.AddFromFilesFuncs(view, funcs, assemble(templatesDir+"/views/"+view)...)
	}
	// the fragment file goes first so it is the template that executes
	for _, name := range fragments {
		files := append([]string{templatesDir + "/" + name}, includes...)
		r.AddFromFilesFuncs(name, funcs, files...)
	}
	return r
}
