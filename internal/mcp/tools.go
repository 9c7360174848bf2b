package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/activity"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/dataset"
	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/NomuraAI/SIGADES-sub000/internal/normalize"
	"github.com/NomuraAI/SIGADES-sub000/internal/sheet"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultListPageSize = 100

type ListVersionsParams struct{}

type ListRecordsParams struct {
	Version  string `json:"version,omitempty" jsonschema:"version tag to list (blank means Default)"`
	All      bool   `json:"all,omitempty" jsonschema:"list every version instead of one"`
	Page     int    `json:"page,omitempty" jsonschema:"zero-based page index"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"records per page (default 100)"`
}

type ImportSpreadsheetParams struct {
	Path    string `json:"path" jsonschema:"path to an .xlsx, .xlsm or .csv file readable by the server"`
	Sheet   string `json:"sheet,omitempty" jsonschema:"worksheet name (default is the first sheet)"`
	Version string `json:"version,omitempty" jsonschema:"version tag for the imported rows (blank means Default)"`
	Mode    string `json:"mode,omitempty" jsonschema:"smart_update (default) or replace_append"`
	Confirm bool   `json:"confirm,omitempty" jsonschema:"set after the user confirmed a replace_append or remote import"`
}

type CreateRecordParams struct {
	Version string            `json:"version,omitempty" jsonschema:"version tag (blank means Default)"`
	Fields  map[string]string `json:"fields" jsonschema:"record fields keyed by spreadsheet-style column names"`
}

type UpdateRecordParams struct {
	ID      string            `json:"id" jsonschema:"record id"`
	Version string            `json:"version,omitempty" jsonschema:"version tag (blank means Default)"`
	Fields  map[string]string `json:"fields" jsonschema:"complete replacement field set keyed by column names"`
}

type DeleteRecordParams struct {
	ID string `json:"id" jsonschema:"record id"`
}

type ClearVersionParams struct {
	Version string `json:"version,omitempty" jsonschema:"version tag to clear (blank means Default)"`
	Confirm bool   `json:"confirm,omitempty" jsonschema:"set after the user confirmed the deletion"`
}

type ClearAllParams struct {
	Confirm bool `json:"confirm,omitempty" jsonschema:"set after the user confirmed the deletion"`
}

type GetRecentActivityParams struct {
	Version string `json:"version,omitempty" jsonschema:"only entries for this version"`
	Type    string `json:"type,omitempty" jsonschema:"only entries of this activity type"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum entries (default 20)"`
	Offset  int    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

type versionsResponse struct {
	Backend  string   `json:"backend"`
	Versions []string `json:"versions"`
}

type importResponse struct {
	dataset.Summary
	Message string `json:"message"`
}

type clearResponse struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_versions",
		Description: "List the version tags present in the active backend, sorted",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListVersionsParams) (*sdkmcp.CallToolResult, any, error) {
		versions, err := svc.Datasets.Versions(ctx)
		if err != nil {
			return errorResult(err, nil), nil, nil
		}
		return jsonResult(versionsResponse{Backend: string(svc.Datasets.Kind()), Versions: versions})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_records",
		Description: "List one page of records, by version or across all versions",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListRecordsParams) (*sdkmcp.CallToolResult, any, error) {
		pageSize := in.PageSize
		if pageSize == 0 {
			pageSize = defaultListPageSize
		}
		page, err := svc.Records.List(ctx, project.ListRequest{
			Version:  in.Version,
			All:      in.All,
			Page:     in.Page,
			PageSize: pageSize,
		})
		if err != nil {
			return errorResult(err, nil), nil, nil
		}
		return jsonResult(page)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_spreadsheet",
		Description: "Import a spreadsheet into a version. smart_update reconciles by village code, work and sub-activity; replace_append inserts every row",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ImportSpreadsheetParams) (*sdkmcp.CallToolResult, any, error) {
		rows, err := sheet.ReadFile(in.Path, in.Sheet)
		if err != nil {
			return errorResult(err, nil), nil, nil
		}
		summary, err := svc.Datasets.Import(ctx, dataset.ImportRequest{
			Version:   in.Version,
			Mode:      dataset.Mode(in.Mode),
			Rows:      rows,
			Confirmed: in.Confirm,
			Source:    in.Path,
		})
		if err != nil {
			var details any
			if summary != nil {
				details = summary
			}
			return errorResult(err, details), nil, nil
		}
		return jsonResult(importResponse{Summary: *summary, Message: summary.Message()})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_record",
		Description: "Create one record from column-name/value pairs",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateRecordParams) (*sdkmcp.CallToolResult, any, error) {
		created, err := svc.Records.Create(ctx, normalize.Normalize(in.Fields, in.Version))
		if err != nil {
			return errorResult(err, nil), nil, nil
		}
		return jsonResult(created)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_record",
		Description: "Replace every field of an existing record",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateRecordParams) (*sdkmcp.CallToolResult, any, error) {
		updated, err := svc.Records.Update(ctx, in.ID, normalize.Normalize(in.Fields, in.Version))
		if err != nil {
			return errorResult(err, nil), nil, nil
		}
		return jsonResult(updated)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_record",
		Description: "Delete a record by id",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteRecordParams) (*sdkmcp.CallToolResult, any, error) {
		if err := svc.Records.Delete(ctx, in.ID); err != nil {
			return errorResult(err, nil), nil, nil
		}
		return jsonResult(map[string]string{"deleted": in.ID})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_version",
		Description: "Delete every record of one version. Local backend only; requires confirm",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ClearVersionParams) (*sdkmcp.CallToolResult, any, error) {
		version := project.EffectiveVersion(in.Version)
		n, err := svc.Datasets.ClearVersion(ctx, version, in.Confirm)
		if err != nil {
			return errorResult(err, nil), nil, nil
		}
		return jsonResult(clearResponse{Deleted: n, Message: fmt.Sprintf("Deleted %d records from version %q", n, version)})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "clear_all",
		Description: "Delete every record in the store. Local backend only; requires confirm",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ClearAllParams) (*sdkmcp.CallToolResult, any, error) {
		n, err := svc.Datasets.ClearAll(ctx, in.Confirm)
		if err != nil {
			return errorResult(err, nil), nil, nil
		}
		return jsonResult(clearResponse{Deleted: n, Message: fmt.Sprintf("Deleted %d records", n)})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "Show recent imports, edits and clears, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetRecentActivityParams) (*sdkmcp.CallToolResult, any, error) {
		opts := activity.ListActivityOptions{Limit: in.Limit, Offset: in.Offset}
		if in.Version != "" {
			opts.Version = &in.Version
		}
		if in.Type != "" {
			typ := activity.ActivityType(in.Type)
			opts.ActivityType = &typ
		}
		entries, err := svc.Activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return errorResult(err, nil), nil, nil
		}
		if entries == nil {
			entries = []activity.ActivityEntry{}
		}
		return jsonResult(map[string]any{"entries": entries})
	})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
