package github

import (
	"encoding/json"
	"fmt"
	"time"

	gogithub "github.com/google/go-github/v57/github"
	"github.com/jmcampanini/autopr/internal/pr"
)

type PRState string

const (
	PRStateOpen   PRState = "OPEN"
	PRStateClosed PRState = "CLOSED"
	PRStateMerged PRState = "MERGED"
	PRStateDraft  PRState = "DRAFT" // Virtual state: GitHub returns OPEN + isDraft=true
)

func (s PRState) String() string {
	return string(s)
}

func (s PRState) IsValid() bool {
	switch s {
	case PRStateOpen, PRStateClosed, PRStateMerged, PRStateDraft:
		return true
	}
	return false
}

type PullRequest struct {
	AuthorLogin  string
	BaseBranch   string
	BranchName   string
	CreatedAt    time.Time
	FilesChanged int
	LinesAdded   int
	LinesDeleted int
	Number       int
	State        PRState
	Title        string
	URL          string
}

// Ref returns the number and URL of the pull request.
func (p PullRequest) Ref() pr.Ref {
	return pr.Ref{Number: p.Number, URL: p.URL}
}

// IsOpen reports whether the pull request can still be merged; drafts count as open.
func (p PullRequest) IsOpen() bool {
	return p.State == PRStateOpen || p.State == PRStateDraft
}

const prJsonFields = "additions,author,baseRefName,changedFiles,createdAt,deletions,headRefName,isDraft,number,state,title,url"

func (p *PullRequest) UnmarshalJSON(data []byte) error {
	type rawPR struct {
		Additions    int       `json:"additions"`
		BaseRefName  string    `json:"baseRefName"`
		ChangedFiles int       `json:"changedFiles"`
		CreatedAt    time.Time `json:"createdAt"`
		Deletions    int       `json:"deletions"`
		HeadRefName  string    `json:"headRefName"`
		IsDraft      bool      `json:"isDraft"`
		Number       int       `json:"number"`
		State        string    `json:"state"`
		Title        string    `json:"title"`
		URL          string    `json:"url"`
		Author       struct {
			Login string `json:"login"`
		} `json:"author"`
	}
	var raw rawPR
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.AuthorLogin = raw.Author.Login
	p.BaseBranch = raw.BaseRefName
	p.BranchName = raw.HeadRefName
	p.CreatedAt = raw.CreatedAt
	p.FilesChanged = raw.ChangedFiles
	p.LinesAdded = raw.Additions
	p.LinesDeleted = raw.Deletions
	p.Number = raw.Number
	p.Title = raw.Title
	p.URL = raw.URL

	if raw.IsDraft && raw.State == "OPEN" {
		p.State = PRStateDraft
	} else {
		switch raw.State {
		case "OPEN":
			p.State = PRStateOpen
		case "CLOSED":
			p.State = PRStateClosed
		case "MERGED":
			p.State = PRStateMerged
		default:
			return fmt.Errorf("unknown PR state: %s", raw.State)
		}
	}

	return nil
}

// fromAPI converts a REST API pull request. The REST API reports merged pull
// requests as closed with merged=true.
func fromAPI(apiPR *gogithub.PullRequest) PullRequest {
	p := PullRequest{
		AuthorLogin:  apiPR.GetUser().GetLogin(),
		BaseBranch:   apiPR.GetBase().GetRef(),
		BranchName:   apiPR.GetHead().GetRef(),
		CreatedAt:    apiPR.GetCreatedAt().Time,
		FilesChanged: apiPR.GetChangedFiles(),
		LinesAdded:   apiPR.GetAdditions(),
		LinesDeleted: apiPR.GetDeletions(),
		Number:       apiPR.GetNumber(),
		Title:        apiPR.GetTitle(),
		URL:          apiPR.GetHTMLURL(),
	}

	switch {
	case apiPR.GetMerged():
		p.State = PRStateMerged
	case apiPR.GetState() == "closed":
		p.State = PRStateClosed
	case apiPR.GetDraft():
		p.State = PRStateDraft
	default:
		p.State = PRStateOpen
	}
	return p
}
