package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "projects":
		handleProjects(args)
	case "members":
		handleMembers(args)
	case "directory":
		listDirectory(args)
	case "me":
		whoAmI()
	case "signout":
		signOut()
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleProjects(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: projectdesk projects <list|create>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listProjects(args[1:])
	case "create":
		createProject(args[1:])
	default:
		fmt.Printf("unknown projects command: %s\n", subCmd)
	}
}

func handleMembers(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: projectdesk members <list|add|remove|candidates>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listMembers(args[1:])
	case "add":
		addMember(args[1:])
	case "remove":
		removeMember(args[1:])
	case "candidates":
		listCandidates(args[1:])
	default:
		fmt.Printf("unknown members command: %s\n", subCmd)
	}
}

type projectListResponse struct {
	Projects []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	} `json:"projects"`
	Message string `json:"message"`
}

// Project commands
func listProjects(args []string) {
	_ = args
	var result projectListResponse
	if !doGet("/projects", &result) {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPARENT")
	for _, p := range result.Projects {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.ParentID)
	}
	w.Flush()
	if result.Message != "" {
		fmt.Fprintf(os.Stderr, "! %s\n", result.Message)
	}
}

func createProject(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "project name")

	fs.Parse(args)

	if *name == "" {
		fmt.Println("Error: name is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"name": *name}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/projects", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result projectListResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Project created: %s\n", *name)
	} else if result.Message != "" {
		fmt.Printf("✗ %s\n", result.Message)
	} else {
		fmt.Printf("✗ Create failed (status %d)\n", resp.StatusCode)
	}
}

type memberListResponse struct {
	Members []struct {
		ID        string `json:"id"`
		ProjectID string `json:"projectId"`
		ProfileID string `json:"profileId"`
	} `json:"members"`
	Loaded  bool   `json:"loaded"`
	Message string `json:"message"`
}

type profileListResponse struct {
	Directory  []profileRow `json:"directory"`
	Candidates []profileRow `json:"candidates"`
	Message    string       `json:"message"`
}

type profileRow struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// Membership commands
func listMembers(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	project := fs.String("project", "", "project ID")

	fs.Parse(args)

	if *project == "" {
		fmt.Println("Error: project is required")
		fs.PrintDefaults()
		return
	}

	var result memberListResponse
	if !doGet("/projects/"+url.PathEscape(*project)+"/members", &result) {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBERSHIP\tPROFILE")
	for _, m := range result.Members {
		fmt.Fprintf(w, "%s\t%s\n", m.ID, m.ProfileID)
	}
	w.Flush()
	if result.Message != "" {
		fmt.Fprintf(os.Stderr, "! %s\n", result.Message)
	}
}

func addMember(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	project := fs.String("project", "", "project ID")
	profile := fs.String("profile", "", "profile ID to add")

	fs.Parse(args)

	if *project == "" || *profile == "" {
		fmt.Println("Error: project and profile are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"profileId": *profile}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/projects/"+url.PathEscape(*project)+"/members", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result memberListResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Message != "" {
		fmt.Printf("✗ %s\n", result.Message)
		return
	}
	fmt.Printf("✓ Added %s (%d members)\n", *profile, len(result.Members))
}

func removeMember(args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	project := fs.String("project", "", "project ID")
	membership := fs.String("membership", "", "membership row ID to remove")

	fs.Parse(args)

	if *project == "" || *membership == "" {
		fmt.Println("Error: project and membership are required")
		fs.PrintDefaults()
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/projects/"+url.PathEscape(*project)+"/members/"+url.PathEscape(*membership), nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result memberListResponse
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Message != "" {
		fmt.Printf("✗ %s\n", result.Message)
		return
	}
	fmt.Printf("✓ Removed membership %s (%d members remain)\n", *membership, len(result.Members))
}

func listCandidates(args []string) {
	fs := flag.NewFlagSet("candidates", flag.ExitOnError)
	project := fs.String("project", "", "project ID")
	focus := fs.String("focus", "", "narrow to a single profile ID (optional)")

	fs.Parse(args)

	if *project == "" {
		fmt.Println("Error: project is required")
		fs.PrintDefaults()
		return
	}

	path := "/projects/" + url.PathEscape(*project) + "/candidates"
	if *focus != "" {
		path += "?focus=" + url.QueryEscape(*focus)
	}

	var result profileListResponse
	if !doGet(path, &result) {
		return
	}
	printProfiles(result.Candidates)
	if result.Message != "" {
		fmt.Fprintf(os.Stderr, "! %s\n", result.Message)
	}
}

// Directory command
func listDirectory(args []string) {
	_ = args
	var result profileListResponse
	if !doGet("/directory", &result) {
		return
	}
	printProfiles(result.Directory)
	if result.Message != "" {
		fmt.Fprintf(os.Stderr, "! %s\n", result.Message)
	}
}

func whoAmI() {
	var result struct {
		ProfileID  string `json:"profileId"`
		OrgID      string `json:"orgId"`
		Role       string `json:"role"`
		Privileged bool   `json:"privileged"`
	}
	if !doGet("/me", &result) {
		return
	}
	fmt.Printf("✓ %s (org %s, role %s)\n", result.ProfileID, result.OrgID, result.Role)
}

func signOut() {
	req, _ := http.NewRequest("POST", getAPIURL()+"/auth/signout", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == 204 {
		os.Remove(tokenFile())
		fmt.Println("✓ Signed out")
	} else {
		fmt.Printf("✗ Sign out failed (status %d)\n", resp.StatusCode)
	}
}

func printProfiles(profiles []profileRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.FullName, p.Role)
	}
	w.Flush()
}

// Helper functions
func doGet(path string, out interface{}) bool {
	req, _ := http.NewRequest("GET", getAPIURL()+path, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 {
		fmt.Println("Not signed in: set PROJECTDESK_TOKEN or write ~/.projectdesk/token")
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fmt.Printf("Error: bad response: %v\n", err)
		return false
	}
	return true
}

func getAPIURL() string {
	if url := os.Getenv("PROJECTDESK_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.projectdesk/token"
}

func loadToken() string {
	if token := os.Getenv("PROJECTDESK_TOKEN"); token != "" {
		return token
	}
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`ProjectDesk CLI

Usage:
  projectdesk <command> [options]

Commands:
  projects   Project operations (list, create)
  members    Membership operations (list, add, remove, candidates)
  directory  List the active people directory for your org
  me         Show the signed-in identity and permissions
  signout    Revoke the current token
  help       Show this help message

Environment Variables:
  PROJECTDESK_API      API endpoint (default: http://localhost:8080/api)
  PROJECTDESK_TOKEN    Bearer token (falls back to ~/.projectdesk/token)

Examples:
  projectdesk projects list
  projectdesk projects create -name "KeHE — Ops"
  projectdesk members list -project p1
  projectdesk members add -project p1 -profile u42
  projectdesk members candidates -project p1 -focus u42
`)
}
