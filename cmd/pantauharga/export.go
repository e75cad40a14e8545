package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"pantauharga/internal/config"
	"pantauharga/internal/exporter"
	"pantauharga/internal/model"
	"pantauharga/internal/service/dashboard"
	"pantauharga/internal/view"
)

var (
	exportCommodities []string
	exportTiers       []string
	exportProvinces   []string
	exportStart       string
	exportEnd         string
	exportOutput      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Mengekspor rekapan harga hasil filter ke file xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		dash, st, err := openDashboard(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		f, err := exportFilter(dash)
		if err != nil {
			return err
		}
		rows, err := dash.Query(f)
		if err != nil {
			return err
		}

		now := time.Now()
		out := exportOutput
		if out == "" {
			out = filepath.Join(config.ExportDir(cfg), exporter.FileName(now))
		}
		err = exporter.WriteFile(rows, out, exporter.Options{
			Filter:      f,
			GeneratedAt: now,
			Progress: func(p exporter.ProgressEvent) {
				if p.Total > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "\r%3d%% %s %d/%d", p.Percent, p.Stage, p.Rows, p.Total)
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "\r%3d%% %s", p.Percent, p.Stage)
			},
		})
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d baris diekspor ke %s\n", len(rows), out)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringSliceVar(&exportCommodities, "komoditi", nil, "komoditi (bawaan: komoditi pertama)")
	f.StringSliceVar(&exportTiers, "tingkat", nil, "tingkat harga (bawaan: tingkat pertama)")
	f.StringSliceVar(&exportProvinces, "provinsi", nil, "provinsi (bawaan: provinsi pertama)")
	f.StringVar(&exportStart, "start", "", "tanggal awal YYYY-MM-DD")
	f.StringVar(&exportEnd, "end", "", "tanggal akhir YYYY-MM-DD")
	f.StringVarP(&exportOutput, "output", "o", "", "file keluaran (bawaan: data/exports/rekap-<waktu>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

func exportFilter(dash *dashboard.Dashboard) (view.Filter, error) {
	f := view.Filter{
		Commodities: exportCommodities,
		Tiers:       exportTiers,
		Provinces:   exportProvinces,
	}
	for _, p := range []struct {
		raw string
		dst **model.Date
	}{{exportStart, &f.Start}, {exportEnd, &f.End}} {
		if p.raw == "" {
			continue
		}
		d, err := model.ParseDate(p.raw)
		if err != nil {
			return view.Filter{}, err
		}
		*p.dst = &d
	}
	return dash.FillDefaults(f, dashboard.TableDefaultCommodities)
}
