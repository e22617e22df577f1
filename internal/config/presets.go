package config

import (
	"github.com/FocuswithJustin/biocorpus/internal/formats/bioc"
	"github.com/FocuswithJustin/biocorpus/internal/formats/inlinexml"
	"github.com/FocuswithJustin/biocorpus/internal/formats/tabular"
	"github.com/FocuswithJustin/biocorpus/internal/formats/uima"
)

func init() {
	Register(&Dataset{
		Name:     "askapatient",
		Homepage: "https://zenodo.org/record/55013",
		License:  "CC-BY-4.0",
		Citation: "Limsopatham and Collier, Normalising Medical Concepts in Social Media Texts by Learning Semantic Representation, ACL 2016",
		Format:   "tabular",
		Schemas:  []string{"kb"},
		Files:    []string{"AskAPatient.fold-*.txt"},
		Splits: map[string][]string{
			"train":      {"AskAPatient.fold-*.train.txt"},
			"validation": {"AskAPatient.fold-*.validation.txt"},
			"test":       {"AskAPatient.fold-*.test.txt"},
		},
		Delimiter: "\t",
		NoHeader:  true,
		Tabular: tabular.Options{
			Columns:    map[string]string{"id": "0", "text": "2"},
			EntityType: "social_media_text",
			DBName:     "SNOMED-CT|AMT",
		},
	})

	Register(&Dataset{
		Name:     "psytar",
		Homepage: "https://www.askapatient.com/research/pharmacovigilance/corpus-ades-psychiatric-medications.asp",
		License:  "CC-BY-4.0",
		Citation: "Zolnoori et al., The PsyTAR dataset, Data in Brief 2019",
		Format:   "tabular",
		Schemas:  []string{"text"},
		Local:    true,
		Hint:     "request PsyTAR_dataset.xlsx from the homepage and place it in the dataset directory",
		Files:    []string{"PsyTAR_dataset.xlsx"},
		Tabular: tabular.Options{
			Columns: map[string]string{"id": "drug_id", "text": "sentences", "labels": "ADR"},
		},
	})

	Register(&Dataset{
		Name:     "bc5cdr",
		Homepage: "https://biocreative.bioinformatics.udel.edu/tasks/biocreative-v/track-3-cdr/",
		License:  "Public Domain Mark 1.0",
		Citation: "Li et al., BioCreative V CDR task corpus, Database 2016",
		Format:   "bioc-xml",
		Schemas:  []string{"kb"},
		Files:    []string{"CDR_*Set.BioC.xml"},
		Splits: map[string][]string{
			"train":      {"CDR_TrainingSet.BioC.xml"},
			"validation": {"CDR_DevelopmentSet.BioC.xml"},
			"test":       {"CDR_TestSet.BioC.xml"},
		},
		BioC: bioc.Options{DefaultDB: "MESH"},
	})

	Register(&Dataset{
		Name:     "biored",
		Homepage: "https://ftp.ncbi.nlm.nih.gov/pub/lu/BioRED/",
		License:  "Public Domain Mark 1.0",
		Citation: "Luo et al., BioRED: a rich biomedical relation extraction dataset, Briefings in Bioinformatics 2022",
		Format:   "bioc-json",
		Schemas:  []string{"kb"},
		Files:    []string{"*.BioC.JSON"},
		Splits: map[string][]string{
			"train":      {"Train.BioC.JSON"},
			"validation": {"Dev.BioC.JSON"},
			"test":       {"Test.BioC.JSON"},
		},
	})

	Register(&Dataset{
		Name:     "mlee",
		Homepage: "http://nactem.ac.uk/MLEE/",
		License:  "CC-BY-NC-SA-3.0",
		Citation: "Pyysalo et al., Event extraction across multiple levels of biological organization, Bioinformatics 2012",
		Format:   "brat",
		Schemas:  []string{"kb"},
		Files:    []string{"*.txt", "*.ann"},
		Splits: map[string][]string{
			"train":      {"train-*.txt", "train-*.ann"},
			"validation": {"devel-*.txt", "devel-*.ann"},
			"test":       {"test-*.txt", "test-*.ann"},
		},
	})

	Register(&Dataset{
		Name:     "ggponc",
		Homepage: "https://www.leitlinienprogramm-onkologie.de/projekte/ggponc-english/",
		License:  "Data use agreement",
		Citation: "Borchert et al., GGPONC 2.0, LREC 2022",
		Format:   "uima",
		Schemas:  []string{"kb"},
		Local:    true,
		Hint:     "sign the data use agreement, download the UIMA CAS JSON export and unpack it into the dataset directory",
		Files:    []string{"*.json"},
		UIMA:     uima.Options{LabelFeature: "value"},
	})

	Register(&Dataset{
		Name:     "genia_term",
		Homepage: "http://www.geniaproject.org/genia-corpus/term-corpus",
		License:  "GENIA Project License for Annotated Corpora",
		Citation: "Kim et al., GENIA corpus, Bioinformatics 2003",
		Format:   "inline-xml",
		Schemas:  []string{"kb"},
		Files:    []string{"GENIAcorpus*.xml"},
		Joiner:   "\n",
		InlineXML: inlinexml.Options{
			DocumentPath:  "//article",
			EntityElement: "cons",
			TypeAttr:      "sem",
		},
	})

	Register(&Dataset{
		Name:     "scitail",
		Homepage: "https://allenai.org/data/scitail",
		License:  "Apache-2.0",
		Citation: "Khot et al., SciTail: A Textual Entailment Dataset from Science Question Answering, AAAI 2018",
		Format:   "tabular",
		Schemas:  []string{"entailment", "pairs"},
		Files:    []string{"scitail_1.0_*.tsv"},
		Splits: map[string][]string{
			"train":      {"scitail_1.0_train.tsv"},
			"validation": {"scitail_1.0_dev.tsv"},
			"test":       {"scitail_1.0_test.tsv"},
		},
		NoHeader: true,
		Tabular: tabular.Options{
			Columns: map[string]string{"premise": "0", "hypothesis": "1", "label": "2"},
		},
	})

	Register(&Dataset{
		Name:     "biosses",
		Homepage: "https://tabilab.cmpe.boun.edu.tr/BIOSSES/",
		License:  "GPL-3.0",
		Citation: "Soğancıoğlu et al., BIOSSES, Bioinformatics 2017",
		Format:   "tabular",
		Schemas:  []string{"pairs"},
		Files:    []string{"biosses.tsv"},
		Tabular: tabular.Options{
			Columns: map[string]string{"id": "pair_id", "text_1": "sentence1", "text_2": "sentence2", "label": "score"},
		},
	})

	Register(&Dataset{
		Name:     "medqa",
		Homepage: "https://github.com/jind11/MedQA",
		License:  "MIT",
		Citation: "Jin et al., What Disease does this Patient Have?, Applied Sciences 2021",
		Format:   "jsonl",
		Schemas:  []string{"qa"},
		Local:    true,
		Hint:     "download data_clean.zip from the homepage and extract the questions/US jsonl files",
		Files:    []string{"*.jsonl"},
		Splits: map[string][]string{
			"train":      {"train.jsonl"},
			"validation": {"dev.jsonl"},
			"test":       {"test.jsonl"},
		},
	})

	Register(&Dataset{
		Name:     "pubmed_summaries",
		Homepage: "https://github.com/armancohan/long-summarization",
		License:  "Apache-2.0",
		Citation: "Cohan et al., A Discourse-Aware Attention Model for Abstractive Summarization of Long Documents, NAACL 2018",
		Format:   "tabular",
		Schemas:  []string{"text2text"},
		Local:    true,
		Hint:     "export article/abstract pairs to summaries.csv with columns id, article, abstract",
		Files:    []string{"*.csv"},
		Tabular: tabular.Options{
			Columns:   map[string]string{"id": "id", "text_1": "article", "text_2": "abstract"},
			Text1Name: "article",
			Text2Name: "abstract",
		},
	})
}
