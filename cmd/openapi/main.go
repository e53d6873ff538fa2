// openapi serves, validates and exports the REST API specification.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"hass-mcp-server/internal/api"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: openapi <command>")
		fmt.Println("Commands:")
		fmt.Println("  serve    - Serve OpenAPI documentation")
		fmt.Println("  validate - Validate the OpenAPI specification")
		fmt.Println("  export   - Print the specification as YAML")
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "serve":
		serveDocumentation()
	case "validate":
		validateSpec()
	case "export":
		exportSpec()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func serveDocumentation() {
	router := mux.NewRouter()

	router.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		spec, err := loadSpec()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(spec)
	})

	router.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		html := `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Home Assistant MCP Server API</title>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@4/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@4/swagger-ui-standalone-preset.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "/openapi.json",
                dom_id: '#swagger-ui',
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIStandalonePreset
                ],
                layout: "StandaloneLayout"
            });
        }
    </script>
</body>
</html>
`
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	})

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs", http.StatusTemporaryRedirect)
	})

	port := os.Getenv("OPENAPI_PORT")
	if port == "" {
		port = "8081"
	}

	fmt.Printf("Serving OpenAPI documentation at http://localhost:%s/docs\n", port)
	srv := &http.Server{Addr: ":" + port, Handler: router, ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second}
	log.Fatal(srv.ListenAndServe())
}

func validateSpec() {
	doc, err := loadSpec()
	if err != nil {
		fmt.Printf("Error loading spec: %v\n", err)
		os.Exit(1)
	}

	if err := doc.Validate(openapi3.NewLoader().Context); err != nil {
		fmt.Printf("Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("OpenAPI specification is valid")
	fmt.Printf("\nAPI Statistics:\n")
	fmt.Printf("- Paths: %d\n", doc.Paths.Len())
	fmt.Printf("- Operations: %d\n", countOperations(doc))
}

func exportSpec() {
	doc, err := loadSpec()
	if err != nil {
		fmt.Printf("Error loading spec: %v\n", err)
		os.Exit(1)
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		fmt.Printf("Error encoding spec: %v\n", err)
		os.Exit(1)
	}
	var specData interface{}
	if err := json.Unmarshal(jsonData, &specData); err != nil {
		fmt.Printf("Error decoding spec: %v\n", err)
		os.Exit(1)
	}
	out, err := yaml.Marshal(specData)
	if err != nil {
		fmt.Printf("Error converting to YAML: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(string(out))
}

// loadSpec returns the built-in specification, or one loaded from
// OPENAPI_SPEC_PATH when set, so a hand-tuned spec can override the
// generated one.
func loadSpec() (*openapi3.T, error) {
	specPath := os.Getenv("OPENAPI_SPEC_PATH")
	if specPath == "" {
		return api.BuildOpenAPISpec("1.0.0"), nil
	}

	data, err := os.ReadFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}

	var specData interface{}
	if err := yaml.Unmarshal(data, &specData); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	jsonData, err := json.Marshal(specData)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to JSON: %w", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(jsonData)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	return doc, nil
}

func countOperations(doc *openapi3.T) int {
	count := 0
	for _, pathItem := range doc.Paths.Map() {
		for _, op := range []*openapi3.Operation{pathItem.Get, pathItem.Post, pathItem.Put, pathItem.Delete, pathItem.Patch} {
			if op != nil {
				count++
			}
		}
	}
	return count
}
