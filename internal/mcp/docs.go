package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `sigades keeps versioned village development project records in one backend (local SQLite or remote Postgres).

Core concepts:
- Version: an opaque tag grouping one dataset snapshot. Blank means "Default".
- Natural key: village code + work + sub-activity, trimmed and lowercased. Records are reconciled on it.
- smart_update: rows whose natural key already exists in the version update that record; others are inserted. Rerunning the same file is safe.
- replace_append: every row is inserted. Rerunning duplicates data.

Rules of engagement:
1) Orient: list_versions, then list_records for the version you care about.
2) Import: import_spreadsheet with mode smart_update unless the user asks otherwise.
   - CONFIRMATION_REQUIRED means ask the user, then retry with confirm=true.
   - A failed import reports the counts written so far in details.
3) Edit single records with create_record / update_record / delete_record.
4) clear_version and clear_all only work on the local backend and always need confirm=true.
5) get_recent_activity shows what happened recently.

Docs:
- sigades://docs/fields (column names the normalizer recognises)
- sigades://docs/import-modes
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "sigades://docs/fields",
		Name:        "docs_fields",
		Title:       "Recognised spreadsheet columns",
		Description: "How spreadsheet headers map to record fields and how values are parsed.",
		Content: `# Spreadsheet columns

Headers are lowercased and trimmed; spaces and slashes become "_". A header equal to
the canonical name wins. Otherwise the fragments are tried in order and the first
header (in lexicographic order) containing one is used. Unmatched fields are blank or zero.

| Canonical header | Fragments |
|---|---|
| province | provinsi, province, prov |
| regency | kabupaten, kab_kota, regency, kota, kab |
| sub_district | kecamatan, sub_district, subdistrict, district, kec |
| village | nama_desa, desa, kelurahan, village (code and id columns excluded) |
| village_code | kode_desa, kd_desa, village_code, kode_kelurahan, id_desa |
| sub_district_code | kode_kecamatan, kode_kec, kd_kec, sub_district_code |
| work | pekerjaan, work, nama_kegiatan, kegiatan, uraian, program |
| sub_activity | sub_kegiatan, subkegiatan, sub_activity, rincian, detail |
| allocation | anggaran, pagu, allocation, budget, nilai, dana |
| latitude | latitude, lintang, lat |
| longitude | longitude, bujur, long, lng, lon |
| area | luas_wilayah, luas, area |
| population | jumlah_penduduk, penduduk, population, jiwa |
| poverty | penduduk_miskin, miskin, poverty, poor |
| stunting | stunting |
| tier | status_idm, idm, status_desa, tier, klasifikasi |
| notes | keterangan, catatan, notes, note, ket |

Integers drop every non-digit character. Decimals accept a comma separator; "0", "-"
and unparseable values become empty. Tier accepts 0 to 4 or the status names
Sangat Tertinggal, Tertinggal, Berkembang, Maju, Mandiri.
`,
	},
	{
		URI:         "sigades://docs/import-modes",
		Name:        "docs_import_modes",
		Title:       "Import modes and confirmation",
		Description: "smart_update versus replace_append, and when the user must confirm.",
		Content: `# Import modes

## smart_update (default)

1. Every stored record of the target version is collected, page by page.
2. Each row is keyed by village code + work + sub-activity.
3. A key that already exists updates that record in place (its id is kept).
4. A new key is inserted. Inserts are written in batches.

Importing the same file twice leaves the record count unchanged. If the stored
version already holds duplicate keys, the last one seen is updated and the others
are reported as orphaned.

## replace_append

Every row is inserted without looking at stored records.

## Confirmation

replace_append always needs confirm=true. Any import into the remote backend needs
confirm=true. Clearing needs confirm=true and is refused on the remote backend.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
