package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"mentions and hashtags", "@budi tolong cek #urgent printer", "tolong cek printer"},
		{"urls", "lihat https://intranet.example.com/page dan www.example.com sekarang", "lihat dan sekarang"},
		{"digits and punctuation", "Printer lantai 3, error-code 404!!", "Printer lantai error code"},
		{"short tokens", "pc di ruang it", "ruang"},
		{"vowel runs", "queue server", "server"},
		{"underscores", "user_name", "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	n := New(nil)

	assert.Equal(t, "reset password email", n.Normalize("Tolong reset password email saya!!"))
	assert.Equal(t, "", n.Normalize(""))
	assert.Equal(t, "", n.Normalize("tolong segera ya"))
	assert.Equal(t, "jaring server", n.Normalize("Jaringan SERVER"))
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New(nil)
	in := "Perbaikan jaringan di server database kantor pusat"
	first := n.Normalize(in)
	for range 10 {
		assert.Equal(t, first, n.Normalize(in))
	}
}

func TestExtraStopwords(t *testing.T) {
	n := New(nil, " Kantor ")
	assert.True(t, n.IsStopword("kantor"))
	assert.Equal(t, "server", n.Normalize("server kantor"))
}

type suffixStemmer struct{}

func (suffixStemmer) Stem(w string) string { return w + "x" }

func TestCustomStemmer(t *testing.T) {
	n := New(suffixStemmer{})
	assert.Equal(t, "printerx", n.Normalize("printer"))
}

func TestDefaultStopwordsIsCopy(t *testing.T) {
	a := DefaultStopwords()
	delete(a, "yang")
	b := DefaultStopwords()
	_, ok := b["yang"]
	assert.True(t, ok)
	_, ok = b["ybs"]
	assert.True(t, ok)
}

func TestIndonesianStemmer(t *testing.T) {
	s := NewIndonesianStemmer()
	tests := []struct {
		in   string
		want string
	}{
		{"pc", "pc"},
		{"perbaikan", "baik"},
		{"diperbaiki", "baik"},
		{"memperbaiki", "baik"},
		{"membuat", "buat"},
		{"menginstal", "instal"},
		{"printernya", "printer"},
		{"aplikasinya", "aplikasi"},
		{"jaringannya", "jaring"},
		{"server", "server"},
		{"database", "database"},
		{"instalasi", "instalasi"},
		{"Jaringan", "jaring"},
		{"mengirim", "kirim"},
		{"pengiriman", "kirim"},
		{"mengecek", "cek"},
		{"pengecekan", "cek"},
		{"mengedit", "edit"},
		{"mengkonfigurasi", "konfigurasi"},
		{"pekerjaan", "kerja"},
		{"bekerja", "kerja"},
		{"menyala", "nyala"},
		{"menyimpan", "simpan"},
		{"mengunci", "kunci"},
		{"mengaktifkan", "aktif"},
		{"menyelesaikan", "selesai"},
		{"terima", "terima"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Stem(tt.in))
		})
	}
}

func TestSameRootSameTerm(t *testing.T) {
	n := New(nil)
	pairs := []struct{ root, derived string }{
		{"kirim", "mengirim"},
		{"kirim", "pengiriman"},
		{"cek", "mengecek"},
		{"konfigurasi", "mengkonfigurasi"},
		{"kerja", "pekerjaan"},
		{"nyala", "menyala"},
		{"pasang", "memasang"},
		{"tulis", "menulis"},
		{"cetak", "mencetak"},
		{"ganti", "penggantian"},
	}
	for _, p := range pairs {
		t.Run(p.derived, func(t *testing.T) {
			assert.Equal(t, n.Normalize(p.root), n.Normalize(p.derived))
		})
	}
}

func TestStemmerWithoutDictionaryHit(t *testing.T) {
	s := NewIndonesianStemmer()
	// unknown roots keep the first rule reading
	assert.Equal(t, "irip", s.Stem("mengirip"))
	assert.Equal(t, "sapu", s.Stem("menyapu"))
}

func TestStemmerExtraRoots(t *testing.T) {
	assert.Equal(t, "sapu", NewIndonesianStemmer().Stem("menyapu"))
	s := NewIndonesianStemmer("Kantuk")
	assert.True(t, s.IsRoot("kantuk"))
	assert.Equal(t, "kantuk", s.Stem("mengantuk"))
	assert.Equal(t, "antuk", NewIndonesianStemmer().Stem("mengantuk"))
}
