package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"pantauharga/internal/model"
	"pantauharga/internal/server"
	"pantauharga/internal/util"
)

var (
	inputSource    string
	inputCommodity string
	inputTier      string
	inputProvince  string
	inputDate      string
	inputPrice     string
)

var inputCmd = &cobra.Command{
	Use:   "input",
	Short: "Menambahkan satu data harga ke data_input.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := inputObservation()
		if err != nil {
			return err
		}

		dash, st, err := openDashboard(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := dash.AddInput(o); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Data berhasil disimpan: %s %s %s %s %s\n",
			o.Commodity, o.Tier, o.Province, o.Date, util.FormatRupiah(o.Price))
		return nil
	},
}

func init() {
	f := inputCmd.Flags()
	f.StringVar(&inputSource, "sumber", server.DefaultSource, "sumber data")
	f.StringVar(&inputCommodity, "komoditi", "", "komoditi (wajib)")
	f.StringVar(&inputTier, "tingkat", "", "tingkat harga (wajib)")
	f.StringVar(&inputProvince, "provinsi", "", "provinsi (wajib)")
	f.StringVar(&inputDate, "tanggal", "", "tanggal YYYY-MM-DD (bawaan: hari ini)")
	f.StringVar(&inputPrice, "harga", "", "harga (wajib)")
	_ = inputCmd.MarkFlagRequired("komoditi")
	_ = inputCmd.MarkFlagRequired("tingkat")
	_ = inputCmd.MarkFlagRequired("provinsi")
	_ = inputCmd.MarkFlagRequired("harga")
	rootCmd.AddCommand(inputCmd)
}

func inputObservation() (model.Observation, error) {
	date := model.Today()
	if inputDate != "" {
		d, err := model.ParseDate(inputDate)
		if err != nil {
			return model.Observation{}, eris.Wrap(err, "tanggal")
		}
		date = d
	}
	price, err := decimal.NewFromString(inputPrice)
	if err != nil {
		return model.Observation{}, eris.Wrapf(err, "harga %q", inputPrice)
	}
	return model.Observation{
		Source:    inputSource,
		Commodity: inputCommodity,
		Tier:      inputTier,
		Province:  inputProvince,
		Date:      date,
		Price:     price,
	}, nil
}
