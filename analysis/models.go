package analysis

// ClusterDataPoint is one row of numeric columns keyed by column name.
type ClusterDataPoint map[string]float64

type KMeansTrainRequest struct {
	Data      []ClusterDataPoint `json:"data"`
	Features  []string           `json:"features"`
	NClusters int                `json:"n_clusters"`
}

// KMeansResult carries centroids already scaled back to the input units.
type KMeansResult struct {
	Features            []string             `json:"características"`
	NClusters           int                  `json:"n_clusters"`
	Centroids           [][]float64          `json:"centroides"`
	ClusterDistribution map[string]int       `json:"distribución_clusters"`
	TrainedRows         int                  `json:"filas_entrenadas"`
	LabeledSample       []map[string]float64 `json:"muestra_etiquetada"`
}

// DataPoint is one observation: predictors X and response Y.
type DataPoint struct {
	X []float64 `json:"x"`
	Y float64   `json:"y"`
}

type regressionRequest struct {
	DataPoints    []DataPoint `json:"data_points"`
	VariableNames []string    `json:"nombres_variables"`
}

type RegressionResult struct {
	Coefficients  []float64   `json:"coeficientes"`
	R2            float64     `json:"r2"`
	Equation      string      `json:"ecuacion"`
	Predictions   []float64   `json:"predicciones"`
	Residuals     []float64   `json:"residuos"`
	InputData     []DataPoint `json:"datos_entrada"`
	VariableNames []string    `json:"nombres_variables"`
}

type sentimentRequest struct {
	URL         string `json:"url"`
	MaxComments int    `json:"max_comments"`
}

type SentimentResult struct {
	Comment   string `json:"Comentario"`
	Sentiment string `json:"Sentimiento"`
}

type KeywordResult struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type SentimentReport struct {
	VideoTitle    string            `json:"titulo_video"`
	Channel       string            `json:"canal"`
	PublishedAt   string            `json:"fecha_publicacion"`
	Thumbnail     string            `json:"miniatura"`
	Likes         int64             `json:"likes"`
	Views         int64             `json:"vistas"`
	TotalComments int               `json:"total_comentarios"`
	VideoComments int               `json:"total_comentarios_video"`
	Counts        map[string]int    `json:"conteo"`
	Keywords      []KeywordResult   `json:"palabras_clave"`
	Results       []SentimentResult `json:"resultados"`
	URL           *string           `json:"url"`
}

// FacialAuthRequest is the body of facial registration and login. ImageBase64 is one
// camera frame.
type FacialAuthRequest struct {
	UserID      string `json:"user_id"`
	ImageBase64 string `json:"image_base64"`
}

type FacialAuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}
