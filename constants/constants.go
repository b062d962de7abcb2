package constants

// TmpCSVFile is the name pattern for temporary CSV files handed to
// DuckDB's read_csv/COPY.
const TmpCSVFile = "lineup_tmp*.csv"
